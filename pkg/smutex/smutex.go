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

// Package smutex provides scoped mutual-exclusion primitives.
//
// A scoped mutex never exposes a separable lock/unlock pair; the only
// operation is running a closure with exclusive access. The lock is
// released on every exit path of the closure, including a panic, so a
// critical section can never leak its lock.
//
// Implementations do not support reentrancy: calling WithLock on a mutex
// from within a closure already running under that mutex deadlocks.
package smutex

import "sync"

// ScopedMutex is a mutual-exclusion primitive that only grants access in
// the scope of a closure.
//
// WithLock blocks until exclusive access is obtained, runs f with that
// access, and releases it when f returns or panics. There is no timeout
// and no cancellation.
type ScopedMutex interface {
	WithLock(f func())
}

// Mutex is the default ScopedMutex, backed by a standard library mutex.
//
// The zero value is an unlocked mutex ready to use, so a Mutex can be a
// plain field of a statically-initialized structure.
type Mutex struct {
	mu sync.Mutex
}

// WithLock implements ScopedMutex.WithLock.
func (m *Mutex) WithLock(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f()
}
