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

// Package futex wraps the Linux futex(2) syscall for use by the lock and
// semaphore implementations in this module.
//
// Only the small subset needed by this module is exposed: wait, timed wait
// and wake, both in process-private and cross-process (shared) flavors.
package futex

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Timespec normalizes a relative duration into the whole-seconds plus
// sub-second-nanoseconds form the kernel expects. Negative durations clamp
// to zero. Precision below one nanosecond does not exist in time.Duration,
// so nothing is lost.
func Timespec(d time.Duration) unix.Timespec {
	if d < 0 {
		d = 0
	}
	return unix.NsecToTimespec(d.Nanoseconds())
}

// ErrTimedOut is returned by TimedWait when the timeout expires before the
// word changes or a wakeup arrives.
var ErrTimedOut = unix.ETIMEDOUT

// Futex operation constants from <linux/futex.h>; golang.org/x/sys/unix does
// not export these.
const (
	FUTEX_WAIT         = 0
	FUTEX_WAKE         = 1
	FUTEX_PRIVATE_FLAG = 128
	FUTEX_WAIT_PRIVATE = FUTEX_WAIT | FUTEX_PRIVATE_FLAG
	FUTEX_WAKE_PRIVATE = FUTEX_WAKE | FUTEX_PRIVATE_FLAG
)

func sysFutex(addr *uint32, op uintptr, val uint32, ts *unix.Timespec) unix.Errno {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		op,
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0, 0)
	return errno
}

func waitOp(shared bool) uintptr {
	if shared {
		return FUTEX_WAIT
	}
	return FUTEX_WAIT_PRIVATE
}

func wakeOp(shared bool) uintptr {
	if shared {
		return FUTEX_WAKE
	}
	return FUTEX_WAKE_PRIVATE
}

// Wait blocks until *addr is observed to differ from val, or a wakeup
// arrives. A return does not imply the word changed; callers re-check in a
// loop. shared selects the cross-process futex op, required when addr lives
// in memory mapped into more than one process.
func Wait(addr *uint32, val uint32, shared bool) {
	for {
		errno := sysFutex(addr, waitOp(shared), val, nil)
		switch errno {
		case 0, unix.EAGAIN:
			// Woken, or the word already differed from val.
			return
		case unix.EINTR:
			continue
		default:
			panic(fmt.Sprintf("futex: FUTEX_WAIT failed with errno %d", errno))
		}
	}
}

// TimedWait is Wait with a relative timeout. It returns ErrTimedOut if the
// timeout elapsed, and nil otherwise.
func TimedWait(addr *uint32, val uint32, shared bool, ts unix.Timespec) error {
	for {
		errno := sysFutex(addr, waitOp(shared), val, &ts)
		switch errno {
		case 0, unix.EAGAIN:
			return nil
		case unix.EINTR:
			// Restarting with the original relative timeout can over-wait,
			// but callers of this module re-check deadlines themselves.
			continue
		case unix.ETIMEDOUT:
			return ErrTimedOut
		default:
			panic(fmt.Sprintf("futex: FUTEX_WAIT failed with errno %d", errno))
		}
	}
}

// Wake wakes up to n waiters blocked on addr and returns how many it woke.
func Wake(addr *uint32, n int, shared bool) int {
	r, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		wakeOp(shared),
		uintptr(n),
		0, 0, 0)
	if errno != 0 {
		panic(fmt.Sprintf("futex: FUTEX_WAKE failed with errno %d", errno))
	}
	return int(r)
}

var availableWord uint32

// Available reports whether the futex syscall works on this kernel. The
// probe is a wake on a private word that nothing waits on; only ENOSYS
// counts as unavailable.
func Available() bool {
	atomic.StoreUint32(&availableWord, 0)
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&availableWord)),
		FUTEX_WAKE_PRIVATE,
		1, 0, 0, 0)
	return errno != unix.ENOSYS
}
