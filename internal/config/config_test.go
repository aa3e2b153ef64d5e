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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.NotEmpty(t, cfg.InstanceID)
	require.NotZero(t, cfg.SessionID)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.SkipRemoveOnClose)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EXCHANGE_INSTANCE_ID", "abc")
	t.Setenv("EXCHANGE_SESSION_ID", "42")
	t.Setenv("EXCHANGE_REQUEST_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "abc", cfg.InstanceID)
	require.Equal(t, uint64(42), cfg.SessionID)
	require.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.Logging.Level)
}
