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
	"testing"
)

func TestPointOnVisibleSide(t *testing.T) {
	// east going line, front is south
	g := testLineGeometry([4]int{0, 0, 64, 0}, [4]int{0, 0, 64, 64})
	ctx := RenderContext{ClipLine: &g.Lines[0]}
	cases := []struct {
		name string
		x, y Fixed
		want bool
	}{
		{"front", IntToFixed(32), IntToFixed(-10), true},
		{"back", IntToFixed(32), IntToFixed(10), false},
		{"on line", IntToFixed(32), 0, true},
		{"on line beyond endpoint", IntToFixed(1000), 0, true},
		{"just behind", IntToFixed(32), 1, false},
		{"just in front", IntToFixed(32), -1, true},
	}
	for _, c := range cases {
		if got := ctx.PointOnVisibleSide(c.x, c.y); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}

	// diagonal line, where the vanilla side test calls on-line points back
	diag := RenderContext{ClipLine: &g.Lines[1]}
	if !diag.PointOnVisibleSide(IntToFixed(20), IntToFixed(20)) {
		t.Errorf("point on diagonal clip line must pass")
	}
	if diag.PointOnVisibleSide(IntToFixed(20), IntToFixed(20)+1) {
		t.Errorf("point just behind diagonal clip line must fail")
	}
	if !diag.PointOnVisibleSide(IntToFixed(20)+1, IntToFixed(20)) {
		t.Errorf("point just in front of diagonal clip line must pass")
	}

	// no clip line - everything passes
	var none RenderContext
	if !none.PointOnVisibleSide(IntToFixed(32), IntToFixed(10)) {
		t.Errorf("without clip line every point must pass")
	}
}

func TestBBoxVisible(t *testing.T) {
	g := testLineGeometry([4]int{0, 0, 64, 0})
	ctx := RenderContext{ClipLine: &g.Lines[0]}
	box := func(top, bottom, left, right int) *BBox {
		return &BBox{
			BOXTOP:    IntToFixed(top),
			BOXBOTTOM: IntToFixed(bottom),
			BOXLEFT:   IntToFixed(left),
			BOXRIGHT:  IntToFixed(right),
		}
	}
	cases := []struct {
		name string
		box  *BBox
		want bool
	}{
		{"in front", box(-10, -100, 0, 64), true},
		{"behind", box(100, 10, 0, 64), false},
		{"straddles", box(100, -100, -500, 500), true},
		{"touches line from behind", box(100, 0, 0, 64), true},
		{"behind far to the side", box(100, 1, 1000, 2000), false},
	}
	for _, c := range cases {
		if got := ctx.BBoxVisible(c.box); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
	var none RenderContext
	if !none.BBoxVisible(box(100, 10, 0, 64)) {
		t.Errorf("without clip line every box must pass")
	}
}

func TestSegVisible(t *testing.T) {
	g := testLineGeometry([4]int{0, 0, 64, 0}, [4]int{0, 10, 64, 20},
		[4]int{0, -10, 64, 20})
	ctx := RenderContext{ClipLine: &g.Lines[0]}
	behind := &MapSeg{V1: g.Lines[1].V1, V2: g.Lines[1].V2}
	crossing := &MapSeg{V1: g.Lines[2].V1, V2: g.Lines[2].V2}
	if ctx.SegVisible(behind) {
		t.Errorf("seg behind the clip line must be culled")
	}
	if !ctx.SegVisible(crossing) {
		t.Errorf("seg crossing the clip line must pass")
	}
}

func TestColumnsInWindow(t *testing.T) {
	ctx := RenderContext{ClipStart: 100, ClipEnd: 200}
	cases := []struct {
		x1, x2 int
		want   bool
	}{
		{0, 100, false},
		{0, 101, true},
		{150, 160, true},
		{199, 320, true},
		{200, 320, false},
	}
	for _, c := range cases {
		if got := ctx.ColumnsInWindow(c.x1, c.x2); got != c.want {
			t.Errorf("[%d, %d): got %v, want %v", c.x1, c.x2, got, c.want)
		}
	}
}
