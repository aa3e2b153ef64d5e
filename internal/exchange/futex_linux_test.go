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

//go:build linux

package exchange

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFutexWaitReturnsOnValueMismatch(t *testing.T) {
	var word uint32 = 1
	start := time.Now()
	require.NoError(t, futexWait(&word, 0, 0))
	require.Less(t, time.Since(start), time.Second)
}

func TestFutexWakeUnblocksWaiter(t *testing.T) {
	var word uint32

	done := make(chan error, 1)
	go func() {
		// Loop like the real callers: a wake is only a hint.
		for atomic.LoadUint32(&word) == 0 {
			if err := futexWait(&word, 0, 0); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	time.Sleep(50 * time.Millisecond)
	atomic.StoreUint32(&word, 1)
	_, err := futexWake(&word, 1)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestFutexWaitTimesOut(t *testing.T) {
	var word uint32

	start := time.Now()
	err := futexWait(&word, 0, 50*time.Millisecond)
	require.ErrorIs(t, err, errFutexTimeout)

	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.Less(t, elapsed, 5*time.Second)
}
