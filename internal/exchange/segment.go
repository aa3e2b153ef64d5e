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
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

const segmentPrefix = "yb_pg_"

// SharedMemoryPrefix returns the segment name prefix for every channel owned
// by the given server instance. The stale-segment sweeper matches on it.
func SharedMemoryPrefix(instanceID string) string {
	return segmentPrefix + instanceID + "_"
}

// SegmentName returns the OS-visible name of the segment backing the channel
// (instanceID, sessionID).
func SegmentName(instanceID string, sessionID uint64) string {
	return SharedMemoryPrefix(instanceID) + strconv.FormatUint(sessionID, 10)
}

// segmentDir returns the directory holding segment files: /dev/shm where
// available (RAM-backed on Linux), the temporary directory otherwise.
func segmentDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

func segmentPath(name string) string {
	return filepath.Join(segmentDir(), name)
}

// Segment owns the mapping between a channel identity and physical shared
// memory: the named file, its mapping, and the removal responsibility. Only
// the creator removes the OS object; openers never do.
type Segment struct {
	file       *os.File
	mem        []byte
	path       string
	owner      bool
	skipRemove bool
}

// createSegment creates the named segment sized to one platform page, maps
// it, and initializes the header. Fails if a segment by that name exists.
func createSegment(name string, skipRemove bool) (*Segment, error) {
	path := segmentPath(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("create segment file %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	size := os.Getpagesize()
	if err := file.Truncate(int64(size)); err != nil {
		cleanup()
		return nil, fmt.Errorf("resize segment file %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("mmap segment %s: %w", path, err)
	}

	s := &Segment{file: file, mem: mem, path: path, owner: true, skipRemove: skipRemove}
	s.header().init()
	return s, nil
}

// openSegment attaches to an existing segment. The header was initialized by
// the owner and is validated, never re-initialized.
func openSegment(name string) (*Segment, error) {
	path := segmentPath(name)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open segment file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat segment file %s: %w", path, err)
	}
	size := info.Size()
	if size < HeaderSize {
		file.Close()
		return nil, fmt.Errorf("segment file %s too small: %d bytes", path, size)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap segment %s: %w", path, err)
	}

	s := &Segment{file: file, mem: mem, path: path}
	if !s.header().valid() {
		s.Close()
		return nil, fmt.Errorf("segment %s has an invalid or uninitialized header", path)
	}
	return s, nil
}

// header returns the typed view over the start of the mapping.
func (s *Segment) header() *exchangeHeader {
	return (*exchangeHeader)(unsafe.Pointer(&s.mem[0]))
}

// Data returns the payload buffer: everything past the header.
func (s *Segment) Data() []byte {
	return s.mem[HeaderSize:]
}

// Size returns the mapped region size.
func (s *Segment) Size() int {
	return len(s.mem)
}

// Obtain returns the payload buffer if requiredSize fits alongside the
// header, nil otherwise. Capacity is fixed at creation; an oversized request
// is a hard limit, not something to retry.
func (s *Segment) Obtain(requiredSize int) []byte {
	if requiredSize+HeaderSize > len(s.mem) {
		return nil
	}
	return s.Data()
}

// Close unmaps and closes the segment. The owner additionally removes the
// OS object unless removal was suppressed at creation; openers leave it in
// place for the owner to reclaim.
func (s *Segment) Close() error {
	var firstErr error

	if s.mem != nil {
		if err := unix.Munmap(s.mem); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("munmap segment %s: %w", s.path, err)
		}
		s.mem = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	if s.owner && !s.skipRemove {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
