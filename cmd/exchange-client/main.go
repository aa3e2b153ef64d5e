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

// exchange-client attaches to the channel owned by a running
// exchange-server, sends its command-line arguments as one request, and
// prints the response.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

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

	payload := "ping"
	if len(os.Args) > 1 {
		payload = strings.Join(os.Args[1:], " ")
	}

	ex := exchange.MustOpen(cfg.InstanceID, cfg.SessionID, exchange.Config{Logger: log})
	defer ex.Close()

	buf := ex.Obtain(len(payload))
	if buf == nil {
		log.Fatal("payload exceeds channel capacity",
			zap.Int("payload", len(payload)),
			zap.Int("capacity", ex.Capacity()))
	}
	copy(buf, payload)

	var deadline time.Time
	if cfg.RequestTimeout > 0 {
		deadline = time.Now().Add(cfg.RequestTimeout)
	}

	response, err := ex.SendRequest(deadline)
	if err != nil {
		log.Fatal("request failed", zap.Error(err))
	}
	fmt.Println(string(response))
}
