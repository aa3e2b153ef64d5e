// Copyright (c) YugaByte, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied.  See the License for the specific language governing permissions and limitations
// under the License.
//

package exchange

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config carries the optional knobs for channel construction.
type Config struct {
	// Logger receives protocol-violation diagnostics. Defaults to a no-op
	// logger.
	Logger *zap.Logger

	// SkipRemoveOnClose suppresses removal of the owned OS object on Close.
	// Test harnesses use it to inspect a segment after the owner is gone.
	// It has no effect on an opened (non-owned) channel.
	SkipRemoveOnClose bool
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Exchange is one endpoint of a shared-memory request/response channel. At
// most one request is outstanding at a time; there is no queueing and no
// multiplexing. An Exchange is not safe for concurrent sends; each endpoint
// dedicates one blocking call path per role.
type Exchange struct {
	sessionID uint64
	seg       *Segment
	log       *zap.Logger

	// lastSize is the payload size recorded by the latest Obtain; it is
	// what SendRequest publishes.
	lastSize int

	// failedPreviousRequest is set after any failed send so the next send
	// can reclaim a dangling response instead of treating it as misuse.
	failedPreviousRequest bool
}

// Create constructs the owning endpoint: it creates, maps and initializes the
// backing segment. The owner is responsible for removing the OS object on
// Close. Creation failure indicates a broken deployment precondition.
func Create(instanceID string, sessionID uint64, cfg Config) (*Exchange, error) {
	seg, err := createSegment(SegmentName(instanceID, sessionID), cfg.SkipRemoveOnClose)
	if err != nil {
		return nil, fmt.Errorf("create exchange %s/%d: %w", instanceID, sessionID, err)
	}
	return &Exchange{sessionID: sessionID, seg: seg, log: cfg.logger()}, nil
}

// Open attaches to an exchange created by another process. The opener never
// removes the OS object.
func Open(instanceID string, sessionID uint64, cfg Config) (*Exchange, error) {
	seg, err := openSegment(SegmentName(instanceID, sessionID))
	if err != nil {
		return nil, fmt.Errorf("open exchange %s/%d: %w", instanceID, sessionID, err)
	}
	return &Exchange{sessionID: sessionID, seg: seg, log: cfg.logger()}, nil
}

// MustCreate is Create for callers that treat setup failure as fatal. It
// aborts the process with full context, matching the deployment-precondition
// contract of channel construction.
func MustCreate(instanceID string, sessionID uint64, cfg Config) *Exchange {
	e, err := Create(instanceID, sessionID, cfg)
	if err != nil {
		cfg.logger().Fatal("failed to create shared exchange",
			zap.String("instance", instanceID),
			zap.Uint64("session", sessionID),
			zap.Error(err))
	}
	return e
}

// MustOpen is Open with the same fatal contract as MustCreate.
func MustOpen(instanceID string, sessionID uint64, cfg Config) *Exchange {
	e, err := Open(instanceID, sessionID, cfg)
	if err != nil {
		cfg.logger().Fatal("failed to open shared exchange",
			zap.String("instance", instanceID),
			zap.Uint64("session", sessionID),
			zap.Error(err))
	}
	return e
}

// SessionID returns the channel's session identifier.
func (e *Exchange) SessionID() uint64 {
	return e.sessionID
}

// Capacity returns the usable payload capacity of the channel.
func (e *Exchange) Capacity() int {
	return e.seg.Size() - HeaderSize
}

// Obtain records requiredSize as the pending payload size and returns the
// shared buffer to write it into, or nil if it cannot fit.
func (e *Exchange) Obtain(requiredSize int) []byte {
	e.lastSize = requiredSize
	return e.seg.Obtain(requiredSize)
}

// SendRequest publishes the payload recorded by the latest Obtain and blocks
// until the response arrives, the exchange shuts down, or the deadline
// elapses (zero deadline waits forever). On success it returns a view over
// the shared buffer holding the response, valid until the next Obtain or
// send. On failure the reclaim flag is set so the next send can recover the
// slot.
func (e *Exchange) SendRequest(deadline time.Time) ([]byte, error) {
	hdr := e.seg.header()
	n, err := hdr.sendRequest(e.failedPreviousRequest, uint64(e.lastSize), deadline)
	if err != nil {
		if errors.Is(err, ErrTimedOut) {
			metrics.SendTimeouts.Inc()
		}
		e.failedPreviousRequest = true
		return nil, err
	}
	e.failedPreviousRequest = false
	if n > uint64(e.seg.Size()-HeaderSize) {
		// Both sides share one buffer, so this should not happen; refuse
		// to hand out an unreadable view.
		return nil, fmt.Errorf("response of %d bytes in a %d byte region: %w",
			n, e.seg.Size(), ErrResponseTooLarge)
	}
	return e.seg.Data()[:n], nil
}

// ReadyToSend reports whether a send would be admitted right now, taking the
// caller's reclaim eligibility into account. Non-blocking.
func (e *Exchange) ReadyToSend() bool {
	return readyToSend(e.seg.header().loadState(), e.failedPreviousRequest)
}

// Respond publishes a response of the given size for the outstanding request
// and wakes the requester.
func (e *Exchange) Respond(size int) {
	e.seg.header().respond(uint64(size), e.log.With(zap.Uint64("session", e.sessionID)))
}

// Poll blocks until a request arrives and returns its size. It returns
// ErrShutdown once the exchange is stopped; there is no deadline. The header
// is peer-writable memory, so the published size is never trusted: a size no
// buffer of this region could hold is refused as corruption rather than
// handed to the caller.
func (e *Exchange) Poll() (int, error) {
	n, err := e.seg.header().poll()
	if err != nil {
		return 0, err
	}
	if n > uint64(e.seg.Size()-HeaderSize) {
		return 0, fmt.Errorf("request of %d bytes in a %d byte region: %w",
			n, e.seg.Size(), ErrIllegalState)
	}
	return int(n), nil
}

// SignalStop permanently stops the exchange and wakes every waiter in both
// processes. Idempotent.
func (e *Exchange) SignalStop() {
	e.seg.header().signalStop()
}

// Data returns the full payload buffer. The valid length of the current
// message is whatever Poll or SendRequest last reported.
func (e *Exchange) Data() []byte {
	return e.seg.Data()
}

// Close releases the mapping; the owning endpoint also removes the OS object
// unless suppressed by configuration. Close does not stop the peer: callers
// that want waiters released call SignalStop first.
func (e *Exchange) Close() error {
	return e.seg.Close()
}
