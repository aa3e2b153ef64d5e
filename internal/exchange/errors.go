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

import "errors"

// ErrIllegalState indicates a send was attempted while the exchange is not
// ready: a request is already outstanding and the caller is not eligible to
// reclaim the slot. The caller decides whether to retry.
var ErrIllegalState = errors.New("exchange is not ready to send")

// ErrTimedOut indicates the deadline elapsed while waiting for the peer.
// Shared state is left at RequestSent so a late response can still complete;
// the caller must report the failure on its next send to reclaim the slot.
var ErrTimedOut = errors.New("timed out waiting for exchange peer")

// ErrShutdown indicates the exchange was stopped while the caller was waiting
// or before it attempted to use the channel.
var ErrShutdown = errors.New("exchange shutdown in progress")

// ErrResponseTooLarge indicates the responder reported a payload size that
// does not fit into the mapped region. The response cannot be viewed.
var ErrResponseTooLarge = errors.New("response exceeds exchange buffer capacity")

// errFutexTimeout reports a bounded futex wait that elapsed. Internal: the
// wait loop re-checks the state word and converts it into ErrTimedOut.
var errFutexTimeout = errors.New("futex wait timed out")
