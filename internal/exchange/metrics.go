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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level counters on the default registry. Cardinality is flat, so
// there is no per-session labelling; sessions come and go with every backend.
var metrics = struct {
	RequestsHandled      prometheus.Counter
	SendTimeouts         prometheus.Counter
	PollFailures         prometheus.Counter
	StaleSegmentsRemoved prometheus.Counter
}{
	RequestsHandled: promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_requests_handled_total",
		Help: "Requests dispatched to a poll-loop handler",
	}),
	SendTimeouts: promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_send_timeouts_total",
		Help: "Sends that timed out waiting for a response",
	}),
	PollFailures: promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_poll_failures_total",
		Help: "Poll loops terminated by an error other than shutdown",
	}),
	StaleSegmentsRemoved: promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_stale_segments_removed_total",
		Help: "Orphaned segments removed by the startup sweep",
	}),
}
