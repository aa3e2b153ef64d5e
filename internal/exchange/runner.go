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
	"sync"

	"go.uber.org/zap"
)

// Handler processes one request. The slice aliases the shared buffer and is
// valid only until the handler returns; the handler reads the request,
// writes the reply into the buffer and calls Respond before returning.
type Handler func(request []byte)

// Runner drives the responder side of an exchange: a dedicated goroutine
// blocks in Poll and dispatches each request to the handler until the
// exchange is stopped.
type Runner struct {
	exchange *Exchange
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewRunner starts the poll loop. Stop it with Stop; the exchange itself is
// not owned by the runner and still needs its own Close.
func NewRunner(e *Exchange, handler Handler, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{exchange: e, log: log}
	r.wg.Add(1)
	go r.loop(handler)
	return r
}

func (r *Runner) loop(handler Handler) {
	defer r.wg.Done()
	for {
		size, err := r.exchange.Poll()
		if err != nil {
			if !errors.Is(err, ErrShutdown) {
				// Anything but shutdown means the protocol state is
				// corrupt; there is no way to keep serving this channel.
				metrics.PollFailures.Inc()
				r.log.DPanic("poll failed",
					zap.Uint64("session", r.exchange.SessionID()),
					zap.Error(err))
			}
			return
		}
		metrics.RequestsHandled.Inc()
		handler(r.exchange.Data()[:size])
	}
}

// Stop signals the exchange to shut down and waits for the poll loop to
// finish. Safe to call more than once.
func (r *Runner) Stop() {
	r.exchange.SignalStop()
	r.wg.Wait()
}
