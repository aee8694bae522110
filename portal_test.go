// Copyright (C) 2024, VigilantDoomer
//
// This file is part of VigilantPortals program.
//
// VigilantPortals is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VigilantPortals is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VigilantPortals.  If not, see <https://www.gnu.org/licenses/>.
package main

import (
	"errors"
	"testing"
)

func testPortalMaker(g *Geometry, maxDepth int) *portalMaker {
	return &portalMaker{
		geom:      g,
		transform: TransformViewpointPrecise,
		maxDepth:  maxDepth,
	}
}

func TestPortalListLifecycle(t *testing.T) {
	g := testLineGeometry([4]int{0, 0, 64, 0}, [4]int{200, 0, 264, 0})
	m := testPortalMaker(g, 2)
	ctx := RenderContext{
		View:     Viewpoint{X: IntToFixed(32), Y: IntToFixed(-10), Angle: ANG90},
		ClipLine: &g.Lines[1],
	}
	var list PortalList
	const N = 5
	var made []*Portal
	for i := 0; i < N; i++ {
		p, _, err := m.newPortal(&ctx, 0, 1)
		if err != nil {
			t.Fatalf("newPortal: %s", err.Error())
		}
		p.CeilingClip = make([]int16, 4)
		list.append(p)
		made = append(made, p)
	}
	if list.Len() != N {
		t.Fatalf("list has %d portals, want %d", list.Len(), N)
	}
	for i, p := range list.Portals() {
		if p != made[i] {
			t.Errorf("portal %d out of discovery order", i)
		}
		if p.Pass != 1 || p.StartLine != 0 || p.ClipLine != 1 {
			t.Errorf("portal %d: pass %d, lines %d -> %d", i, p.Pass, p.StartLine, p.ClipLine)
		}
	}
	list.Release(&ctx)
	if list.Released() != N || list.Len() != 0 {
		t.Errorf("after release: %d released, %d left", list.Released(), list.Len())
	}
	if ctx.ClipLine != nil {
		t.Errorf("release must clear clip line of the context")
	}
	for i, p := range made {
		if !p.released || p.CeilingClip != nil {
			t.Errorf("portal %d not freed", i)
		}
	}
	// releasing empty list is fine
	list.Release(&ctx)
	list.Release(nil)
	if list.Released() != N {
		t.Errorf("empty release changed counter to %d", list.Released())
	}
}

func TestPortalDoubleReleasePanics(t *testing.T) {
	p := &Portal{StartLine: 1, ClipLine: 2}
	p.release()
	defer func() {
		if recover() == nil {
			t.Errorf("second release didn't panic")
		}
	}()
	p.release()
}

func TestPortalRecursionLimit(t *testing.T) {
	g := testLineGeometry([4]int{0, 0, 64, 0}, [4]int{200, 0, 264, 0})
	m := testPortalMaker(g, 2)
	for depth := 0; depth < 4; depth++ {
		ctx := RenderContext{Depth: depth}
		p, _, err := m.newPortal(&ctx, 0, 1)
		if depth < 2 {
			if err != nil || p == nil || p.Pass != depth+1 {
				t.Errorf("depth %d: expected portal at pass %d, got err %v", depth, depth+1, err)
			}
			continue
		}
		if !errors.Is(err, ErrRecursionLimit) || p != nil {
			t.Errorf("depth %d: expected ErrRecursionLimit, got %v", depth, err)
		}
	}
	// never deeper than the stencil buffer allows, whatever was asked for
	m = testPortalMaker(g, 1000)
	ctx := RenderContext{Depth: MAX_PORTAL_PASS}
	if _, _, err := m.newPortal(&ctx, 0, 1); !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("expected ErrRecursionLimit past %d passes, got %v", MAX_PORTAL_PASS, err)
	}
}

func TestPortalBadLines(t *testing.T) {
	g := testLineGeometry([4]int{0, 0, 64, 0}, [4]int{200, 0, 264, 0})
	g.Lines[1].FrontSector = nil
	m := testPortalMaker(g, 2)
	var ctx RenderContext
	for _, c := range [][2]int{{0, 5}, {-1, 0}, {0, 1}} {
		_, _, err := m.newPortal(&ctx, c[0], c[1])
		if !errors.Is(err, ErrBadIndex) {
			t.Errorf("lines %d -> %d: expected ErrBadIndex, got %v", c[0], c[1], err)
		}
	}
}

func TestPortalRing(t *testing.T) {
	r := CreatePortalRing(3)
	if r.capacity != 4 {
		t.Errorf("capacity %d, want 4", r.capacity)
	}
	var ps []*Portal
	for i := 0; i < 3; i++ {
		p := &Portal{StartLine: i}
		ps = append(ps, p)
		r.Enqueue(p)
	}
	// move read past the start, so that growing has to unwrap
	if r.Dequeue() != ps[0] {
		t.Fatalf("dequeued wrong portal")
	}
	for i := 3; i < 10; i++ {
		p := &Portal{StartLine: i}
		ps = append(ps, p)
		r.Enqueue(p)
	}
	if r.Size() != 9 {
		t.Errorf("size %d, want 9", r.Size())
	}
	for i := 1; i < 10; i++ {
		if r.Front() != ps[i] {
			t.Fatalf("front is not portal %d", i)
		}
		if r.Dequeue() != ps[i] {
			t.Fatalf("dequeued portal out of order at %d", i)
		}
	}
	if !r.Empty() || r.Dequeue() != nil || r.Front() != nil {
		t.Errorf("ring should be empty")
	}
}

func TestRoundPOW2(t *testing.T) {
	cases := [][2]uint32{{0, 0}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {16, 16}, {17, 32}}
	for _, c := range cases {
		if got := RoundPOW2_Uint32(c[0]); got != c[1] {
			t.Errorf("RoundPOW2_Uint32(%d) = %d, want %d", c[0], got, c[1])
		}
	}
}
