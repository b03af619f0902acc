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

// DynNode is a member of a DynList. It owns a concrete payload of type T
// which the list observes as a D through the coercion supplied at
// construction.
//
// Like Node, a DynNode is created detached, attaches exactly once and must
// be detached before it is abandoned. It must not be copied.
type DynNode[D, T any] struct {
	_ noCopy

	hdr  dynHeader[D]
	list *DynList[D]
	val  T
}

// NewDynNode creates a detached node bound to l, carrying v. It takes no
// lock.
//
// view coerces a payload pointer to the list's common view type and is
// invoked, under the lock, once per iteration step that reaches this node.
// For an interface view the coercion is just the pointer itself:
//
//	NewDynNode(l, myPayload, func(p *payload) fmt.Stringer { return p })
//
// For a slice view it is a reslice, which carries the element count:
//
//	NewDynNode(l, [4]byte{20, 50, 70, 3}, func(p *[4]byte) []byte { return p[:] })
//
// The coercion must be pure: derived from the pointer only, with no other
// captured state.
func NewDynNode[D, T any](l *DynList[D], v T, view func(*T) D) *DynNode[D, T] {
	if view == nil {
		panic("pinlist: NewDynNode with nil view")
	}
	n := &DynNode[D, T]{list: l, val: v}
	// The header's view closes over the node, so the erased chain can
	// recover a correctly-typed D without knowing T.
	n.hdr.view = func() D { return view(&n.val) }
	return n
}

// Attach links the node at the back of its list and returns a handle for
// locked access to the concrete payload. The list mutex is locked briefly
// to insert the node.
//
// Attach panics if the node was already attached or already detached.
func (n *DynNode[D, T]) Attach() *DynHandle[D, T] {
	l := n.list
	l.mu.WithLock(func() {
		if n.hdr.state != stateNew {
			panic("pinlist: Attach on a node that already left the detached state")
		}
		n.hdr.state = stateAttached
		l.chain.PushBack(&n.hdr)
	})
	return &DynHandle[D, T]{list: l, node: n}
}

// Detach unlinks the node from its list, locking the mutex briefly, and
// retires it. Idempotent; also a no-op on a never-attached node.
func (n *DynNode[D, T]) Detach() {
	l := n.list
	l.mu.WithLock(func() {
		if n.hdr.state == stateAttached {
			l.chain.Remove(&n.hdr)
		}
		n.hdr.state = stateDead
	})
}

// DynHandle grants locked access to an attached DynNode's concrete payload.
// Unlike iteration, handle access does not go through the view: the handle
// retains T and yields it directly.
//
// Dropping a handle does not detach the node.
type DynHandle[D, T any] struct {
	list *DynList[D]
	node *DynNode[D, T]
}

func (h *DynHandle[D, T]) access(f func(*T)) {
	h.list.mu.WithLock(func() {
		if h.node.hdr.state != stateAttached {
			panic("pinlist: handle used after Detach")
		}
		f(&h.node.val)
	})
}

// WithLock locks the list and calls f with the concrete payload. The
// payload must be treated as read-only; use WithLockPin or WithLockMut to
// mutate.
func (h *DynHandle[D, T]) WithLock(f func(*T)) {
	h.access(f)
}

// WithLockPin locks the list and calls f with the concrete payload for
// mutation in place. This is the accessor to default to when mutating.
func (h *DynHandle[D, T]) WithLockPin(f func(*T)) {
	h.access(f)
}

// WithLockMut locks the list and calls f with the concrete payload for
// unrestricted mutation, including wholesale replacement. Only use it when
// T is relocation-safe.
func (h *DynHandle[D, T]) WithLockMut(f func(*T)) {
	h.access(f)
}

// List returns the list the node was created for. It takes no lock.
func (h *DynHandle[D, T]) List() *DynList[D] {
	return h.list
}
