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

// Package exchange implements a low-latency request/response channel between
// two co-located processes backed by a shared memory segment.
//
// Each channel is identified by an (instance id, session id) pair and maps to
// exactly one named segment sized to a single platform page. The segment
// starts with a fixed 64-byte header holding the exchange state machine; the
// remainder of the page is the payload buffer shared by both directions.
//
// The state machine has four states: Idle, RequestSent, ResponseSent and
// Shutdown. Exactly one request may be outstanding at a time. Buffer ownership
// alternates strictly with the state: the requester writes while the exchange
// is Idle or ResponseSent, the responder writes while it is RequestSent. The
// buffer itself is never locked; correctness follows from the alternation.
//
// Since Go has no interprocess mutex or condition variable, state transitions
// are atomic compare-and-swap operations on the state word and blocked peers
// park on it with futex wait/wake. The state word therefore serves as both the
// synchronization state and the wakeup channel for the two processes.
package exchange
