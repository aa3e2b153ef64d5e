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
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Exchange states. The zero value is Idle so a freshly truncated segment is
// already in the initial state.
const (
	stateIdle uint32 = iota
	stateRequestSent
	stateResponseSent
	stateShutdown
)

func stateName(s uint32) string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateRequestSent:
		return "RequestSent"
	case stateResponseSent:
		return "ResponseSent"
	case stateShutdown:
		return "Shutdown"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

const (
	// HeaderSize is the fixed size of the exchange header at the start of
	// the mapped region. The payload buffer begins at this offset.
	HeaderSize = 64

	headerMagic   = "YBXCHG\x00\x00"
	headerVersion = uint32(1)
)

// exchangeHeader is the fixed layout at offset 0 of the mapped region. It is
// never allocated by Go; instances are views over shared memory obtained via
// Segment.header(). The state word is both the atomic state machine and the
// futex word the two processes park on.
type exchangeHeader struct {
	magic       [8]byte  // 0x00: "YBXCHG\0\0", written last during init
	version     uint32   // 0x08: layout version
	state       uint32   // 0x0C: exchange state, futex word
	payloadSize uint64   // 0x10: valid bytes of the current message
	reserved    [40]byte // 0x18-0x3F: padding to 64 bytes
	// payload buffer starts at offset 0x40
}

// init prepares a freshly created header. Runs exactly once, on the owner
// side; openers must never call it. The magic is stored last so a concurrent
// opener cannot validate a half-initialized header.
func (h *exchangeHeader) init() {
	atomic.StoreUint64(&h.payloadSize, 0)
	atomic.StoreUint32(&h.state, stateIdle)
	atomic.StoreUint32(&h.version, headerVersion)
	copy(h.magic[:], headerMagic)
}

// valid reports whether the header was initialized by an owner with a layout
// this build understands.
func (h *exchangeHeader) valid() bool {
	return string(h.magic[:]) == headerMagic && atomic.LoadUint32(&h.version) == headerVersion
}

func (h *exchangeHeader) loadState() uint32 {
	return atomic.LoadUint32(&h.state)
}

func (h *exchangeHeader) casState(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(&h.state, old, new)
}

func (h *exchangeHeader) loadPayloadSize() uint64 {
	return atomic.LoadUint64(&h.payloadSize)
}

func (h *exchangeHeader) storePayloadSize(n uint64) {
	atomic.StoreUint64(&h.payloadSize, n)
}

// wake wakes every process parked on the state word. Transitions are rare
// and each waiter re-checks the state, so waking all is the simple safe
// choice.
func (h *exchangeHeader) wake() {
	futexWake(&h.state, math.MaxInt32)
}

// readyToSend reports whether a request may be sent in the given state. Two
// cases qualify: the exchange is idle, or the previous request by this caller
// failed and its response has since arrived, in which case the dangling
// ResponseSent slot is reclaimed by the next send.
func readyToSend(state uint32, failedPrevious bool) bool {
	return state == stateIdle || (failedPrevious && state == stateResponseSent)
}

// sendRequest publishes a request of the given size and waits for the
// response, bounded by deadline (zero deadline waits forever). On success the
// exchange returns to Idle and the response size is returned. On timeout the
// state is left at RequestSent: the slot stays claimed so a late responder
// can still complete it and the caller can reclaim it afterwards.
func (h *exchangeHeader) sendRequest(failedPrevious bool, size uint64, deadline time.Time) (uint64, error) {
	for {
		state := h.loadState()
		if state == stateShutdown {
			return 0, fmt.Errorf("send request: %w", ErrShutdown)
		}
		if !readyToSend(state, failedPrevious) {
			return 0, fmt.Errorf("send request in wrong state %s: %w", stateName(state), ErrIllegalState)
		}
		// The payload size must be visible before the peer can observe
		// RequestSent; the CAS releases it together with the buffer bytes.
		h.storePayloadSize(size)
		if h.casState(state, stateRequestSent) {
			break
		}
	}
	h.wake()

	n, err := h.await(stateResponseSent, deadline)
	if err != nil {
		return 0, err
	}
	// Consume the response. A concurrent SignalStop wins the race: the CAS
	// fails against Shutdown and the terminal state is preserved.
	h.casState(stateResponseSent, stateIdle)
	return n, nil
}

// respond publishes a response for the currently outstanding request.
// Responding while no request is outstanding is a protocol violation and is
// logged, except when the exchange is shutting down, which is a benign race.
func (h *exchangeHeader) respond(size uint64, log *zap.Logger) {
	for {
		state := h.loadState()
		if state != stateRequestSent {
			if state != stateShutdown {
				log.DPanic("respond in wrong state", zap.String("state", stateName(state)))
			}
			return
		}
		h.storePayloadSize(size)
		if h.casState(stateRequestSent, stateResponseSent) {
			h.wake()
			return
		}
	}
}

// poll waits indefinitely for a request and returns its size. The responder
// side has no deadline; it blocks until a request or shutdown arrives.
func (h *exchangeHeader) poll() (uint64, error) {
	return h.await(stateRequestSent, time.Time{})
}

// signalStop moves the exchange to the terminal Shutdown state and wakes
// every waiter. Idempotent; no transition ever leaves Shutdown.
func (h *exchangeHeader) signalStop() {
	atomic.StoreUint32(&h.state, stateShutdown)
	h.wake()
}

// await blocks until the state equals want, returning the payload size
// recorded with that transition. A zero deadline waits forever. The loop
// reloads the state after every wake, so spurious futex returns and lost
// races are handled by re-checking rather than trusting the wake itself.
func (h *exchangeHeader) await(want uint32, deadline time.Time) (uint64, error) {
	for {
		state := h.loadState()
		if state == want {
			return h.loadPayloadSize(), nil
		}
		if state == stateShutdown {
			return 0, fmt.Errorf("waiting for %s: %w", stateName(want), ErrShutdown)
		}

		var timeout time.Duration
		if !deadline.IsZero() {
			timeout = time.Until(deadline)
			if timeout <= 0 {
				// Re-check once before declaring a timeout: the
				// transition may have happened since the load above.
				if state = h.loadState(); state == want {
					return h.loadPayloadSize(), nil
				}
				return 0, fmt.Errorf("waiting for %s, state %s: %w",
					stateName(want), stateName(state), ErrTimedOut)
			}
		}
		if err := futexWait(&h.state, state, timeout); err != nil && err != errFutexTimeout {
			return 0, err
		}
	}
}
