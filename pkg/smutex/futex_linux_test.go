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

import "testing"

func TestFutexMutexExclusion(t *testing.T) {
	testExclusion(t, &FutexMutex{})
}

func TestFutexMutexReleaseOnPanic(t *testing.T) {
	testReleaseOnPanic(t, &FutexMutex{})
}

func TestFutexMutexUncontended(t *testing.T) {
	var m FutexMutex
	ran := false
	m.WithLock(func() { ran = true })
	if !ran {
		t.Fatalf("closure did not run")
	}
	if m.state != futexUnlocked {
		t.Fatalf("state after release: got %d, wanted %d", m.state, futexUnlocked)
	}
}
