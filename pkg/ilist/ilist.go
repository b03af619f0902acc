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

// Package ilist provides the implementation of intrusive linked lists.
//
// An intrusive list keeps its link fields inside the members' own storage,
// so entries can be added to and removed from a list in O(1) time and with
// no additional memory allocations. The list itself never owns the storage
// of its members; it only holds their addresses.
package ilist

// Linker is the constraint that elements must satisfy if they want to be
// added to and/or removed from List objects. An element reports and updates
// the location of its own link fields given its address.
//
// E is expected to be a pointer type; the zero value of E is used as the
// nil sentinel for list ends and detached links.
type Linker[E any] interface {
	comparable
	Next() E
	Prev() E
	SetNext(E)
	SetPrev(E)
}

// List is an intrusive list. The zero value for List is an empty list ready
// to use.
//
// To iterate over a list (where l is a List[E]):
//
//	for e := l.Front(); e != zero; e = e.Next() {
//		// do something with e.
//	}
type List[E Linker[E]] struct {
	head E
	tail E
}

// Reset resets list l to the empty state.
func (l *List[E]) Reset() {
	var zero E
	l.head = zero
	l.tail = zero
}

// Empty returns true iff the list is empty.
func (l *List[E]) Empty() bool {
	var zero E
	return l.head == zero
}

// Front returns the first element of list l or the zero E.
func (l *List[E]) Front() E {
	return l.head
}

// Back returns the last element of list l or the zero E.
func (l *List[E]) Back() E {
	return l.tail
}

// Len returns the number of elements in the list.
//
// NOTE: This is an O(n) operation.
func (l *List[E]) Len() (count int) {
	var zero E
	for e := l.head; e != zero; e = e.Next() {
		count++
	}
	return count
}

// PushFront inserts the element e at the front of list l.
func (l *List[E]) PushFront(e E) {
	var zero E
	e.SetNext(l.head)
	e.SetPrev(zero)
	if l.head != zero {
		l.head.SetPrev(e)
	} else {
		l.tail = e
	}
	l.head = e
}

// PushBack inserts the element e at the back of list l.
func (l *List[E]) PushBack(e E) {
	var zero E
	e.SetNext(zero)
	e.SetPrev(l.tail)
	if l.tail != zero {
		l.tail.SetNext(e)
	} else {
		l.head = e
	}
	l.tail = e
}

// PushBackList inserts list m at the end of list l, emptying m.
func (l *List[E]) PushBackList(m *List[E]) {
	var zero E
	if l.head == zero {
		l.head = m.head
		l.tail = m.tail
	} else if m.head != zero {
		l.tail.SetNext(m.head)
		m.head.SetPrev(l.tail)
		l.tail = m.tail
	}
	m.head = zero
	m.tail = zero
}

// InsertAfter inserts e after b.
func (l *List[E]) InsertAfter(b, e E) {
	var zero E
	a := b.Next()
	e.SetNext(a)
	e.SetPrev(b)
	b.SetNext(e)
	if a != zero {
		a.SetPrev(e)
	} else {
		l.tail = e
	}
}

// InsertBefore inserts e before a.
func (l *List[E]) InsertBefore(a, e E) {
	var zero E
	b := a.Prev()
	e.SetNext(a)
	e.SetPrev(b)
	a.SetPrev(e)
	if b != zero {
		b.SetNext(e)
	} else {
		l.head = e
	}
}

// Remove removes e from l.
func (l *List[E]) Remove(e E) {
	var zero E
	prev := e.Prev()
	next := e.Next()

	if prev != zero {
		prev.SetNext(next)
	} else if l.head == e {
		l.head = next
	}

	if next != zero {
		next.SetPrev(prev)
	} else if l.tail == e {
		l.tail = prev
	}

	e.SetNext(zero)
	e.SetPrev(zero)
}

// Entry is a default implementation of Linker. Users can add anonymous
// fields of this type to their structs to make them automatically implement
// the methods needed by List.
type Entry[E any] struct {
	next E
	prev E
}

// Next returns the entry that follows e in the list.
func (e *Entry[E]) Next() E {
	return e.next
}

// Prev returns the entry that precedes e in the list.
func (e *Entry[E]) Prev() E {
	return e.prev
}

// SetNext assigns 'elem' as the entry that follows e in the list.
func (e *Entry[E]) SetNext(elem E) {
	e.next = elem
}

// SetPrev assigns 'elem' as the entry that precedes e in the list.
func (e *Entry[E]) SetPrev(elem E) {
	e.prev = elem
}
