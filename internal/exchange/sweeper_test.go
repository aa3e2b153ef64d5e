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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepRemovesOnlyMatchingSegments(t *testing.T) {
	dir := t.TempDir()
	stale := []string{"yb_pg_abc_1", "yb_pg_abc_7"}
	keep := []string{"yb_pg_def_2", "unrelated"}
	for _, name := range append(append([]string{}, stale...), keep...) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	removed, err := sweepDir(dir, SharedMemoryPrefix("abc"), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, len(stale), removed)

	for _, name := range stale {
		_, err := os.Stat(filepath.Join(dir, name))
		require.True(t, os.IsNotExist(err), "stale segment %s should be gone", name)
	}
	for _, name := range keep {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "segment %s should survive", name)
	}
}

func TestSweepMissingDirectoryFails(t *testing.T) {
	_, err := sweepDir(filepath.Join(t.TempDir(), "missing"), "yb_pg_abc_", zap.NewNop())
	require.Error(t, err)
}

func TestCleanupRemovesOrphanedChannel(t *testing.T) {
	instance := testInstanceID()

	// Simulate an unclean shutdown: the owner dies without removing its
	// segment.
	owner, err := Create(instance, 7, Config{SkipRemoveOnClose: true})
	require.NoError(t, err)
	require.NoError(t, owner.Close())

	removed, err := Cleanup(instance, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = Open(instance, 7, Config{})
	require.Error(t, err)
}
