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

package smutex

import (
	"runtime"
	"sync/atomic"
)

// SpinMutex is a ScopedMutex that busy-waits for the lock, yielding the
// processor between attempts. It is intended for very short critical
// sections; under real contention Mutex performs better.
//
// The zero value is an unlocked mutex ready to use.
type SpinMutex struct {
	locked uint32
}

// WithLock implements ScopedMutex.WithLock.
func (m *SpinMutex) WithLock(f func()) {
	for !atomic.CompareAndSwapUint32(&m.locked, 0, 1) {
		runtime.Gosched()
	}
	defer atomic.StoreUint32(&m.locked, 0)
	f()
}
