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
	"fmt"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

func collectDyn[D any](l *DynList[D]) []D {
	var out []D
	l.WithIter(func(it *DynIter[D]) {
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			out = append(out, v)
		}
	})
	return out
}

func TestDynSliceView(t *testing.T) {
	l := NewDyn[[]byte]()

	n := NewDynNode(l, [4]byte{20, 50, 70, 3}, func(p *[4]byte) []byte { return p[:] })
	defer n.Detach()
	h := n.Attach()

	views := collectDyn(l)
	if len(views) != 1 {
		t.Fatalf("got %d views, wanted 1", len(views))
	}
	if diff := cmp.Diff([]byte{20, 50, 70, 3}, views[0]); diff != "" {
		t.Errorf("slice view mismatch (-want +got):\n%s", diff)
	}

	// Mutation through the handle is visible through the view.
	h.WithLockPin(func(p *[4]byte) { p[2] = 7 })
	views = collectDyn(l)
	if diff := cmp.Diff([]byte{20, 50, 7, 3}, views[0]); diff != "" {
		t.Errorf("after handle mutation (-want +got):\n%s", diff)
	}
}

func TestDynMixedWidths(t *testing.T) {
	l := NewDyn[[]byte]()

	a := NewDynNode(l, [2]byte{20, 50}, func(p *[2]byte) []byte { return p[:] })
	defer a.Detach()
	a.Attach()

	b := NewDynNode(l, [4]byte{20, 50, 70, 3}, func(p *[4]byte) []byte { return p[:] })
	defer b.Detach()
	b.Attach()

	want := [][]byte{{20, 50}, {20, 50, 70, 3}}
	if diff := cmp.Diff(want, collectDyn(l)); diff != "" {
		t.Errorf("mixed-width views (-want +got):\n%s", diff)
	}
}

func TestDynSliceMutationThroughView(t *testing.T) {
	l := NewDyn[[]int]()

	n := NewDynNode(l, [4]int{1, 2, 3, 4}, func(p *[4]int) []int { return p[:] })
	defer n.Detach()
	h := n.Attach()

	l.WithIterPin(func(it *DynIter[[]int]) {
		for s, ok := it.Next(); ok; s, ok = it.Next() {
			for i := range s {
				s[i] *= 2
			}
		}
	})

	// The view writes through to the node's own storage.
	var got [4]int
	h.WithLock(func(p *[4]int) { got = *p })
	if diff := cmp.Diff([4]int{2, 4, 6, 8}, got); diff != "" {
		t.Errorf("payload after view mutation (-want +got):\n%s", diff)
	}
}

type colorName string

func (c *colorName) String() string { return string(*c) }

type hexCode int

func (h *hexCode) String() string { return "#" + strconv.FormatInt(int64(*h), 16) }

func TestDynInterfaceView(t *testing.T) {
	l := NewDyn[fmt.Stringer]()

	a := NewDynNode(l, colorName("red"), func(p *colorName) fmt.Stringer { return p })
	defer a.Detach()
	a.Attach()

	b := NewDynNode(l, hexCode(0xff0000), func(p *hexCode) fmt.Stringer { return p })
	defer b.Detach()
	hb := b.Attach()

	var got []string
	for _, v := range collectDyn(l) {
		got = append(got, v.String())
	}
	if diff := cmp.Diff([]string{"red", "#ff0000"}, got); diff != "" {
		t.Errorf("interface views (-want +got):\n%s", diff)
	}

	// Mutating the concrete payload through the handle changes what the
	// erased view observes.
	hb.WithLockMut(func(p *hexCode) { *p = 0x00ff00 })
	got = got[:0]
	for _, v := range collectDyn(l) {
		got = append(got, v.String())
	}
	if diff := cmp.Diff([]string{"red", "#ff00"}, got); diff != "" {
		t.Errorf("after handle mutation (-want +got):\n%s", diff)
	}
}

func TestDynDetachOrder(t *testing.T) {
	l := NewDyn[[]byte]()

	a := NewDynNode(l, [1]byte{1}, func(p *[1]byte) []byte { return p[:] })
	defer a.Detach()
	a.Attach()

	b := NewDynNode(l, [1]byte{2}, func(p *[1]byte) []byte { return p[:] })
	b.Attach()

	c := NewDynNode(l, [1]byte{3}, func(p *[1]byte) []byte { return p[:] })
	defer c.Detach()
	c.Attach()

	b.Detach()
	want := [][]byte{{1}, {3}}
	if diff := cmp.Diff(want, collectDyn(l)); diff != "" {
		t.Errorf("after middle detach (-want +got):\n%s", diff)
	}
}

func TestDynLifecyclePanics(t *testing.T) {
	l := NewDyn[fmt.Stringer]()

	n := NewDynNode(l, colorName("blue"), func(p *colorName) fmt.Stringer { return p })
	h := n.Attach()
	mustPanic(t, "second Attach", func() { n.Attach() })

	n.Detach()
	n.Detach()
	mustPanic(t, "Attach after Detach", func() { n.Attach() })
	mustPanic(t, "handle after Detach", func() { h.WithLock(func(*colorName) {}) })

	mustPanic(t, "nil view", func() {
		NewDynNode[fmt.Stringer, colorName](l, "green", nil)
	})
}

func TestDynConcurrentChurn(t *testing.T) {
	const (
		workers = 4
		cycles  = 200
	)

	l := NewDyn[[]byte]()

	keep := NewDynNode(l, [2]byte{0xaa, 0xbb}, func(p *[2]byte) []byte { return p[:] })
	defer keep.Detach()
	keep.Attach()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < cycles; i++ {
				n := NewDynNode(l, [4]byte{byte(w), byte(i), 0, 0}, func(p *[4]byte) []byte { return p[:] })
				h := n.Attach()
				var ok bool
				h.WithLock(func(p *[4]byte) { ok = p[0] == byte(w) && p[1] == byte(i) })
				if !ok {
					return fmt.Errorf("worker %d cycle %d: payload corrupted", w, i)
				}
				n.Detach()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := l.Len(); got != 1 {
		t.Errorf("final Len: got %d, wanted 1", got)
	}
	if diff := cmp.Diff([][]byte{{0xaa, 0xbb}}, collectDyn(l)); diff != "" {
		t.Errorf("persistent node after churn (-want +got):\n%s", diff)
	}
}
