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

// Package config holds environment-driven configuration for the exchange
// binaries. A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full configuration surface of the exchange binaries.
type Config struct {
	// InstanceID names the owning server instance and prefixes every
	// segment created for it.
	InstanceID string `envconfig:"EXCHANGE_INSTANCE_ID" default:"yugabyte"`

	// SessionID identifies the channel within the instance.
	SessionID uint64 `envconfig:"EXCHANGE_SESSION_ID" default:"1"`

	// RequestTimeout bounds a client request; zero waits forever.
	RequestTimeout time.Duration `envconfig:"EXCHANGE_REQUEST_TIMEOUT" default:"5s"`

	// MetricsAddr is the listen address of the server's Prometheus
	// endpoint; empty disables it.
	MetricsAddr string `envconfig:"EXCHANGE_METRICS_ADDR" default:":9090"`

	// SkipRemoveOnClose keeps the segment file on owner shutdown. Test
	// harnesses only.
	SkipRemoveOnClose bool `envconfig:"EXCHANGE_SKIP_REMOVE_ON_CLOSE" default:"false"`

	Logging LogConfig
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads configuration from the environment, after merging in a .env
// file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
