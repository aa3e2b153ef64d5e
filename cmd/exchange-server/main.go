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

// exchange-server owns a shared-memory exchange channel: it sweeps stale
// segments from a previous run, creates the segment for the configured
// session, and serves requests from its poll loop until interrupted. The
// demo handler uppercases the request payload in place and echoes it back.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ajd12342/yugabyte-db/internal/config"
	"github.com/ajd12342/yugabyte-db/internal/exchange"
	"github.com/ajd12342/yugabyte-db/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewDefault().Fatal("invalid configuration", zap.Error(err))
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		logging.NewDefault().Fatal("invalid log configuration", zap.Error(err))
	}
	defer log.Sync()

	removed, err := exchange.Cleanup(cfg.InstanceID, log)
	if err != nil {
		log.Fatal("stale segment sweep failed",
			zap.String("instance", cfg.InstanceID), zap.Error(err))
	}
	if removed > 0 {
		log.Info("removed stale segments", zap.Int("count", removed))
	}

	ex := exchange.MustCreate(cfg.InstanceID, cfg.SessionID, exchange.Config{
		Logger:            log,
		SkipRemoveOnClose: cfg.SkipRemoveOnClose,
	})

	runner := exchange.NewRunner(ex, func(request []byte) {
		log.Debug("request received", zap.Int("bytes", len(request)))
		for i, b := range request {
			if 'a' <= b && b <= 'z' {
				request[i] = b - 'a' + 'A'
			}
		}
		ex.Respond(len(request))
	}, log)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	log.Info("exchange server ready",
		zap.String("instance", cfg.InstanceID),
		zap.Uint64("session", cfg.SessionID),
		zap.Int("capacity", ex.Capacity()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	runner.Stop()
	if err := ex.Close(); err != nil {
		log.Warn("close failed", zap.Error(err))
	}
}
