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

// Package pinlist provides mutex-guarded intrusive lists of externally-owned
// nodes.
//
// A List never owns the storage of its members. Callers create a Node bound
// to a list, attach it, and later detach it; in between, the node's payload
// may be accessed either through the Handle returned by Attach or through a
// locked whole-list iteration. All access is serialized by a single scoped
// mutex per list, so an attach, a detach, a handle access and an iteration
// can never interleave.
//
// Typical use:
//
//	l := pinlist.New[uint64]()
//
//	n := l.NewNode(123)
//	h := n.Attach()
//	defer n.Detach()
//
//	h.WithLock(func(v *uint64) { fmt.Println(*v) })
//
//	l.WithIter(func(it *pinlist.Iter[uint64]) {
//		for v, ok := it.Next(); ok; v, ok = it.Next() {
//			fmt.Println(*v)
//		}
//	})
//
// A node must be detached before it is abandoned; Detach is idempotent and
// intended for defer. Nodes and lists must not be copied once in use (go vet
// flags such copies).
//
// The mutex is not reentrant: calling any locking operation on a list from
// within a callback already running under that list's lock deadlocks.
//
// The DynList variant holds nodes of differing concrete payload types and
// observes them through one common view type, such as an interface or a
// slice; see NewDynNode.
package pinlist

import (
	"github.com/pinnable/pinlist/pkg/ilist"
	"github.com/pinnable/pinlist/pkg/smutex"
)

// noCopy makes go vet's copylocks check flag values that embed it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// nodeState tracks a node's position in its lifecycle. It is guarded by the
// owning list's mutex.
//
// The only transitions are new -> attached -> dead and new -> dead. A dead
// node can never be attached again; reusing one panics instead of silently
// double-linking it into the chain.
type nodeState uint8

const (
	stateNew nodeState = iota
	stateAttached
	stateDead
)

// List is a mutex-guarded intrusive list of Nodes carrying payloads of
// type T.
//
// The list holds only the addresses of attached nodes, never their storage.
// Iteration yields payloads in attach order.
type List[T any] struct {
	_ noCopy

	mu smutex.ScopedMutex

	// chain is guarded by mu.
	chain ilist.List[*Node[T]]
}

// New creates an empty List guarded by a default smutex.Mutex.
func New[T any]() *List[T] {
	return NewManual[T](&smutex.Mutex{})
}

// NewManual creates an empty List guarded by the given mutex. Use this when
// the mutex implementation matters, e.g. an smutex.SpinMutex for very short
// critical sections.
func NewManual[T any](mu smutex.ScopedMutex) *List[T] {
	if mu == nil {
		panic("pinlist: NewManual with nil mutex")
	}
	return &List[T]{mu: mu}
}

// Iter iterates over the payloads of a list's attached nodes, front to
// back. It is only valid inside the WithIter-family callback it was handed
// to; an escaped iterator yields nothing.
type Iter[T any] struct {
	next *Node[T]
}

// Next returns a pointer to the next payload, or false when the iteration
// is exhausted. The pointer must not be retained past the iteration
// callback.
func (it *Iter[T]) Next() (*T, bool) {
	n := it.next
	if n == nil {
		return nil, false
	}
	it.next = n.Entry.Next()
	return &n.val, true
}

func (l *List[T]) withIter(f func(*Iter[T])) {
	l.mu.WithLock(func() {
		it := Iter[T]{next: l.chain.Front()}
		defer func() { it.next = nil }()
		f(&it)
	})
}

// WithIter locks the list and calls f with an iterator over the current
// chain. The payloads must be treated as read-only; use WithIterPin or
// WithIterMut to mutate.
//
// The lock is held for the duration of f, so no attach, detach or other
// access can interleave with the iteration.
func (l *List[T]) WithIter(f func(*Iter[T])) {
	l.withIter(f)
}

// WithIterPin is WithIter for mutation in place: f may update the payloads
// through the yielded pointers but must not replace a payload wholesale if
// anything else holds its address. This is the accessor to default to when
// mutating.
func (l *List[T]) WithIterPin(f func(*Iter[T])) {
	l.withIter(f)
}

// WithIterMut is WithIter for unrestricted mutation, including replacing
// payloads wholesale. Only use it when the payload type is relocation-safe:
// no self-references and no addresses captured outside the list.
func (l *List[T]) WithIterMut(f func(*Iter[T])) {
	l.withIter(f)
}

// Len returns the number of attached nodes. It locks the list and counts;
// O(n).
func (l *List[T]) Len() int {
	var n int
	l.mu.WithLock(func() {
		n = l.chain.Len()
	})
	return n
}
