// Copyright 2026 The pinlist Authors.
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

package smutex

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// FutexMutex is a ScopedMutex that parks contended waiters in the kernel
// using the futex syscall instead of spinning. It is cheaper than Mutex
// when the same OS thread repeatedly takes an uncontended lock, and it
// demonstrates a mutex that cannot be constructed in a constant context
// being supplied to NewManual-style constructors.
//
// The zero value is an unlocked mutex ready to use.
type FutexMutex struct {
	// state is 0 (unlocked), 1 (locked, no waiters) or 2 (locked,
	// possibly contended). Accessed atomically; waited on via futex.
	state uint32
}

const (
	futexUnlocked  = 0
	futexLocked    = 1
	futexContended = 2
)

// Futex operation constants from the Linux kernel ABI
// (include/uapi/linux/futex.h); x/sys/unix does not export them.
const (
	_FUTEX_WAIT         = 0
	_FUTEX_WAKE         = 1
	_FUTEX_PRIVATE_FLAG = 128
)

// WithLock implements ScopedMutex.WithLock.
func (m *FutexMutex) WithLock(f func()) {
	m.lock()
	defer m.unlock()
	f()
}

func (m *FutexMutex) lock() {
	if atomic.CompareAndSwapUint32(&m.state, futexUnlocked, futexLocked) {
		return
	}
	// Announce contention, then sleep until the holder wakes us. A
	// wakeup is only a hint; we must reacquire with the contended value
	// so that our own release wakes the next waiter.
	for atomic.SwapUint32(&m.state, futexContended) != futexUnlocked {
		futexWait(&m.state, futexContended)
	}
}

func (m *FutexMutex) unlock() {
	if atomic.SwapUint32(&m.state, futexUnlocked) == futexContended {
		futexWake(&m.state, 1)
	}
}

func futexWait(addr *uint32, val uint32) {
	for {
		_, _, errno := unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), _FUTEX_WAIT|_FUTEX_PRIVATE_FLAG, uintptr(val), 0, 0, 0)
		switch errno {
		case 0, unix.EAGAIN:
			// Woken, or *addr already changed from val.
			return
		case unix.EINTR:
			continue
		default:
			panic(fmt.Sprintf("smutex: FUTEX_WAIT failed: %v", errno))
		}
	}
}

func futexWake(addr *uint32, n uint32) {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), _FUTEX_WAKE|_FUTEX_PRIVATE_FLAG, uintptr(n), 0, 0, 0)
	if errno != 0 {
		panic(fmt.Sprintf("smutex: FUTEX_WAKE failed: %v", errno))
	}
}
