// Copyright 2025 The go-lock Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux

package sem

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ezoushen/go-lock/pkg/futex"
)

// The count is a single futex word in a file under /dev/shm, mmap'd
// MAP_SHARED so other openers of the same name sleep and wake on the same
// memory. This mirrors how glibc lays out sem_open semaphores.
const (
	shmDir  = "/dev/shm"
	semSize = 4
)

func shmPath(name string) string {
	// POSIX-style names carry a leading slash; further separators are not
	// meaningful and must not escape the shm directory.
	name = strings.TrimPrefix(name, "/")
	return shmDir + "/" + strings.ReplaceAll(name, "/", "-")
}

type shmSemaphore struct {
	path string
	mem  []byte
	word *uint32
}

func openBackend(cfg config, initial uint32) (semBackend, error) {
	oflags := unix.O_RDWR | unix.O_CLOEXEC
	if cfg.flags&OpenCreate != 0 {
		oflags |= unix.O_CREAT
	}
	if cfg.flags&OpenExclusive != 0 {
		oflags |= unix.O_EXCL
	}
	p := shmPath(cfg.name)
	fd, err := unix.Open(p, oflags, uint32(cfg.mode))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer unix.Close(fd)

	// A fresh file has size zero; sizing it marks it initialized. Openers
	// racing here without OpenExclusive may both see size zero, which is the
	// same hazard sem_open leaves to callers that skip O_EXCL.
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("fstat %s: %w", p, err)
	}
	created := st.Size < semSize
	if created {
		if err := unix.Ftruncate(fd, semSize); err != nil {
			return nil, fmt.Errorf("ftruncate %s: %w", p, err)
		}
	}

	mem, err := unix.Mmap(fd, 0, semSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", p, err)
	}
	s := &shmSemaphore{path: p, mem: mem, word: (*uint32)(unsafe.Pointer(&mem[0]))}
	if created {
		atomic.StoreUint32(s.word, initial)
	}
	return s, nil
}

func unlinkBackend(name string) error {
	return unix.Unlink(shmPath(name))
}

func (s *shmSemaphore) wait() {
	for {
		v := atomic.LoadUint32(s.word)
		if v > 0 {
			if atomic.CompareAndSwapUint32(s.word, v, v-1) {
				return
			}
			continue
		}
		futex.Wait(s.word, 0, true)
	}
}

func (s *shmSemaphore) tryWait() bool {
	for {
		v := atomic.LoadUint32(s.word)
		if v == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(s.word, v, v-1) {
			return true
		}
	}
}

func (s *shmSemaphore) waitFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		v := atomic.LoadUint32(s.word)
		if v > 0 {
			if atomic.CompareAndSwapUint32(s.word, v, v-1) {
				return true
			}
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if futex.TimedWait(s.word, 0, true, futex.Timespec(remaining)) == futex.ErrTimedOut {
			// One more pass over the count before reporting the timeout.
			return s.tryWait()
		}
	}
}

func (s *shmSemaphore) signal() {
	atomic.AddUint32(s.word, 1)
	futex.Wake(s.word, 1, true)
}

func (s *shmSemaphore) close(unlink bool) {
	if err := unix.Munmap(s.mem); err != nil {
		panic(fmt.Sprintf("sem: munmap %s: %v", s.path, err))
	}
	s.mem = nil
	s.word = nil
	if unlink {
		// Best effort: the name may have been unlinked explicitly already.
		_ = unix.Unlink(s.path)
	}
}
