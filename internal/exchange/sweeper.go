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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Cleanup removes segments left behind by a prior unclean shutdown of the
// given instance. It runs at server startup, independent of live channels.
// A failure to list the directory propagates; failing to remove one match is
// logged and the sweep continues, since leftovers are best-effort cleanup.
func Cleanup(instanceID string, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	return sweepDir(segmentDir(), SharedMemoryPrefix(instanceID), log)
}

func sweepDir(dir, prefix string, log *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list shared memory directory %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			log.Warn("failed to remove stale segment",
				zap.String("segment", name),
				zap.Error(err))
			continue
		}
		metrics.StaleSegmentsRemoved.Inc()
		removed++
	}
	return removed, nil
}
