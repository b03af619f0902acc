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

package pinlist

import (
	"github.com/pinnable/pinlist/pkg/ilist"
	"github.com/pinnable/pinlist/pkg/smutex"
)

// DynList is the type-erased variant of List. Nodes of differing concrete
// payload types attach to the same list and are observed uniformly through
// the view type D, typically an interface or a slice.
//
// The chain links headers rather than nodes; each header carries a view
// function bound at node construction that recovers a D from its node's
// payload. That per-node function is the whole dispatch mechanism: no
// registry of concrete types exists anywhere.
type DynList[D any] struct {
	_ noCopy

	mu smutex.ScopedMutex

	// chain is guarded by mu.
	chain ilist.List[*dynHeader[D]]
}

// dynHeader is the link-bearing record shared by all DynNode instantiations
// attached to one DynList. It is the only part of a node the list can see.
type dynHeader[D any] struct {
	ilist.Entry[*dynHeader[D]]

	// view recovers the node's payload as a D. Set once at node
	// construction, never changed.
	view func() D

	// state is guarded by the owning list's mutex.
	state nodeState
}

// NewDyn creates an empty DynList guarded by a default smutex.Mutex.
func NewDyn[D any]() *DynList[D] {
	return NewDynManual[D](&smutex.Mutex{})
}

// NewDynManual creates an empty DynList guarded by the given mutex.
func NewDynManual[D any](mu smutex.ScopedMutex) *DynList[D] {
	if mu == nil {
		panic("pinlist: NewDynManual with nil mutex")
	}
	return &DynList[D]{mu: mu}
}

// DynIter iterates over the attached nodes of a DynList, front to back,
// yielding each node's payload as a D. It is only valid inside the
// WithIter-family callback it was handed to.
type DynIter[D any] struct {
	next *dynHeader[D]
}

// Next returns the next node's view, or false when the iteration is
// exhausted.
func (it *DynIter[D]) Next() (D, bool) {
	h := it.next
	if h == nil {
		var zero D
		return zero, false
	}
	it.next = h.Entry.Next()
	return h.view(), true
}

func (l *DynList[D]) withIter(f func(*DynIter[D])) {
	l.mu.WithLock(func() {
		it := DynIter[D]{next: l.chain.Front()}
		defer func() { it.next = nil }()
		f(&it)
	})
}

// WithIter locks the list and calls f with an iterator over the current
// chain. The views must be treated as read-only; use WithIterPin or
// WithIterMut to mutate through them.
func (l *DynList[D]) WithIter(f func(*DynIter[D])) {
	l.withIter(f)
}

// WithIterPin is WithIter for mutation in place through the views (e.g.
// assigning slice elements, or calling mutating interface methods). This is
// the accessor to default to when mutating.
func (l *DynList[D]) WithIterPin(f func(*DynIter[D])) {
	l.withIter(f)
}

// WithIterMut is WithIter for unrestricted mutation through the views. Only
// use it when every attached payload type is relocation-safe.
func (l *DynList[D]) WithIterMut(f func(*DynIter[D])) {
	l.withIter(f)
}

// Len returns the number of attached nodes. It locks the list and counts;
// O(n).
func (l *DynList[D]) Len() int {
	var n int
	l.mu.WithLock(func() {
		n = l.chain.Len()
	})
	return n
}
