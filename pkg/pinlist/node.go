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
)

// Node is a member of a List. It owns its payload and its link fields; the
// list only ever holds its address.
//
// A Node is created detached by List.NewNode, enters the list via Attach
// and leaves it via Detach. It must not be copied: the chain stores its
// address, so a copy would either dangle or double-link.
type Node[T any] struct {
	ilist.Entry[*Node[T]]

	_ noCopy

	list *List[T]

	// state is guarded by list's mutex.
	state nodeState

	val T
}

// NewNode creates a detached node bound to l, carrying v. It takes no lock.
//
// The node does nothing until Attach is called, and the caller remains
// responsible for calling Detach before abandoning it.
func (l *List[T]) NewNode(v T) *Node[T] {
	return &Node[T]{list: l, val: v}
}

// Attach links the node at the back of its list and returns a handle for
// locked access to the payload. The list mutex is locked briefly to insert
// the node.
//
// Attach panics if the node was already attached or already detached; a
// node goes through the lifecycle exactly once.
func (n *Node[T]) Attach() *Handle[T] {
	l := n.list
	l.mu.WithLock(func() {
		if n.state != stateNew {
			panic("pinlist: Attach on a node that already left the detached state")
		}
		n.state = stateAttached
		l.chain.PushBack(n)
	})
	return &Handle[T]{list: l, node: n}
}

// Detach unlinks the node from its list, locking the mutex briefly. After
// Detach the node is retired: it cannot be re-attached and its handles
// panic on use.
//
// Detach is idempotent and is also a no-op on a never-attached node, so it
// is safe to defer unconditionally right after NewNode.
func (n *Node[T]) Detach() {
	l := n.list
	l.mu.WithLock(func() {
		if n.state == stateAttached {
			l.chain.Remove(n)
		}
		n.state = stateDead
	})
}

// Handle grants locked access to an attached node's payload. It carries no
// lifecycle authority: dropping a handle does not detach the node, and any
// number of copies may exist.
type Handle[T any] struct {
	list *List[T]
	node *Node[T]
}

func (h *Handle[T]) access(f func(*T)) {
	h.list.mu.WithLock(func() {
		if h.node.state != stateAttached {
			panic("pinlist: handle used after Detach")
		}
		f(&h.node.val)
	})
}

// WithLock locks the list and calls f with the payload. The payload must be
// treated as read-only; use WithLockPin or WithLockMut to mutate.
func (h *Handle[T]) WithLock(f func(*T)) {
	h.access(f)
}

// WithLockPin locks the list and calls f with the payload for mutation in
// place. f must not replace the payload wholesale if anything else holds
// its address. This is the accessor to default to when mutating.
func (h *Handle[T]) WithLockPin(f func(*T)) {
	h.access(f)
}

// WithLockMut locks the list and calls f with the payload for unrestricted
// mutation, including wholesale replacement. Only use it when the payload
// type is relocation-safe: no self-references and no addresses captured
// outside the list.
func (h *Handle[T]) WithLockMut(f func(*T)) {
	h.access(f)
}

// List returns the list the node was created for. It takes no lock.
func (h *Handle[T]) List() *List[T] {
	return h.list
}
