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

//go:build !linux

package exchange

import (
	"sync/atomic"
	"time"
)

// Platforms without a shared futex fall back to bounded-interval polling of
// the state word. Latency suffers but the protocol stays correct: every wait
// loop re-checks the state, so a wake is only ever an optimization.

const pollInterval = time.Millisecond

func futexWait(addr *uint32, val uint32, timeout time.Duration) error {
	if atomic.LoadUint32(addr) != val {
		return nil
	}
	sleep := pollInterval
	if timeout > 0 && timeout < sleep {
		sleep = timeout
	}
	time.Sleep(sleep)
	return nil
}

func futexWake(addr *uint32, n int) (int, error) {
	// Pollers notice the store on their next interval.
	return 0, nil
}
