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
	"fmt"
	"math"
	"math/bits"
)

// Run-time representation of level geometry, what the renderer sees after the
// lumps were loaded. The portal code only ever reads it.

var ErrBadIndex = errors.New("index out of range")

// Bounding box slot indices, same order as in NODES lump (see BB_TOP etc. in
// gamespec.go)
const (
	BOXTOP    = BB_TOP
	BOXBOTTOM = BB_BOTTOM
	BOXLEFT   = BB_LEFT
	BOXRIGHT  = BB_RIGHT
)

type BBox [4]Fixed

// NF_SUBSECTOR marks a node child that is a subsector rather than another
// node. Vanilla (0x8000) and DeePBSP (0x80000000) flags are both converted to
// it on load
const NF_SUBSECTOR = 0x40000000

type MapVertex struct {
	X Fixed
	Y Fixed
}

type MapSector struct {
	FloorHeight   Fixed
	CeilingHeight Fixed
	Tag           uint16
	idx           int
}

type MapLine struct {
	V1, V2      *MapVertex
	Dx, Dy      Fixed
	Flags       uint16
	Action      uint16
	Tag         uint16
	FrontSector *MapSector
	BackSector  *MapSector // nil for one-sided line
	idx         int
}

type MapSeg struct {
	V1, V2      *MapVertex
	Line        *MapLine
	LineIndex   int
	Side        int // 0 - seg follows same direction as linedef, 1 - the opposite
	FrontSector *MapSector
	BackSector  *MapSector
	idx         int
}

type MapSubsector struct {
	FirstSeg int
	NumSegs  int
	Sector   *MapSector
}

type MapNode struct {
	X, Y     Fixed
	Dx, Dy   Fixed
	BBox     [2]BBox // 0 - right (front) child, 1 - left (back) child
	Children [2]int
}

type Geometry struct {
	Vertices   []MapVertex
	Sectors    []MapSector
	Lines      []MapLine
	Segs       []MapSeg
	Subsectors []MapSubsector
	Nodes      []MapNode
	Bounds     LevelBounds
}

func (g *Geometry) Line(idx int) (*MapLine, error) {
	if idx < 0 || idx >= len(g.Lines) {
		return nil, fmt.Errorf("line %d (have %d lines): %w", idx, len(g.Lines),
			ErrBadIndex)
	}
	return &g.Lines[idx], nil
}

func (g *Geometry) Seg(idx int) (*MapSeg, error) {
	if idx < 0 || idx >= len(g.Segs) {
		return nil, fmt.Errorf("seg %d (have %d segs): %w", idx, len(g.Segs),
			ErrBadIndex)
	}
	return &g.Segs[idx], nil
}

func (l *MapLine) Index() int {
	return l.idx
}

func (s *MapSeg) Index() int {
	return s.idx
}

func (s *MapSector) Index() int {
	return s.idx
}

// Center returns the midpoint of the line. Halves are added rather than the
// sum halved so that big coordinates can't overflow
func (l *MapLine) Center() (Fixed, Fixed) {
	return l.V1.X/2 + l.V2.X/2, l.V1.Y/2 + l.V2.Y/2
}

// PointOnLineSide returns 0 (front) or 1 (back). Front is to the right of the
// line direction. Points exactly on the line report as front for axis-aligned
// lines and as back for the rest, the usual vanilla quirk
func PointOnLineSide(x, y Fixed, line *MapLine) int {
	if line.Dx == 0 {
		if x <= line.V1.X {
			return b2i(line.Dy > 0)
		}
		return b2i(line.Dy < 0)
	}
	if line.Dy == 0 {
		if y <= line.V1.Y {
			return b2i(line.Dx < 0)
		}
		return b2i(line.Dx > 0)
	}
	dx := x - line.V1.X
	dy := y - line.V1.Y
	left := FixedMul(line.Dy>>FRACBITS, dx)
	right := FixedMul(dy, line.Dx>>FRACBITS)
	if right < left {
		return 0
	}
	return 1
}

// PointOnNodeSide is the node version of the above, used when walking the
// tree
func PointOnNodeSide(x, y Fixed, node *MapNode) int {
	if node.Dx == 0 {
		if x <= node.X {
			return b2i(node.Dy > 0)
		}
		return b2i(node.Dy < 0)
	}
	if node.Dy == 0 {
		if y <= node.Y {
			return b2i(node.Dx < 0)
		}
		return b2i(node.Dx > 0)
	}
	dx := x - node.X
	dy := y - node.Y
	// Try to quickly decide by looking at sign bits
	if (node.Dy^node.Dx^dx^dy)&Fixed(math.MinInt32) != 0 {
		if (node.Dy^dx)&Fixed(math.MinInt32) != 0 {
			return 1
		}
		return 0
	}
	left := FixedMul(node.Dy>>FRACBITS, dx)
	right := FixedMul(dy, node.Dx>>FRACBITS)
	if right < left {
		return 0
	}
	return 1
}

// LineCrossSign returns the sign of the cross product of the line direction
// and the vector from V1 to (x, y): -1 when the point is in front (to the
// right), +1 when behind, 0 when it lies exactly on the infinite line. The
// operands are up to 33 bits wide, so the products are compared in 128 bits
func LineCrossSign(x, y Fixed, line *MapLine) int {
	a := int64(line.Dx)
	b := int64(y) - int64(line.V1.Y)
	c := int64(line.Dy)
	d := int64(x) - int64(line.V1.X)
	return cmpProducts(a, b, c, d)
}

// PointOnLineSideExact is PointOnLineSide without the fixed point truncation.
// Points on the line report as front
func PointOnLineSideExact(x, y Fixed, line *MapLine) int {
	if LineCrossSign(x, y, line) > 0 {
		return 1
	}
	return 0
}

// cmpProducts compares a*b with c*d exactly
func cmpProducts(a, b, c, d int64) int {
	sab := sign64(a) * sign64(b)
	scd := sign64(c) * sign64(d)
	if sab != scd {
		if sab < scd {
			return -1
		}
		return 1
	}
	if sab == 0 {
		return 0
	}
	hi1, lo1 := bits.Mul64(abs64(a), abs64(b))
	hi2, lo2 := bits.Mul64(abs64(c), abs64(d))
	cmp := 0
	if hi1 != hi2 {
		cmp = 1
		if hi1 < hi2 {
			cmp = -1
		}
	} else if lo1 != lo2 {
		cmp = 1
		if lo1 < lo2 {
			cmp = -1
		}
	}
	// both products negative: bigger magnitude is the smaller number
	return cmp * sab
}

func sign64(v int64) int {
	if v < 0 {
		return -1
	} else if v > 0 {
		return 1
	}
	return 0
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ClearBox / AddToBox mirror m_bbox from the engine
func ClearBox(box *BBox) {
	box[BOXTOP] = Fixed(math.MinInt32)
	box[BOXRIGHT] = Fixed(math.MinInt32)
	box[BOXBOTTOM] = Fixed(math.MaxInt32)
	box[BOXLEFT] = Fixed(math.MaxInt32)
}

func AddToBox(box *BBox, x, y Fixed) {
	if x < box[BOXLEFT] {
		box[BOXLEFT] = x
	}
	if x > box[BOXRIGHT] {
		box[BOXRIGHT] = x
	}
	if y < box[BOXBOTTOM] {
		box[BOXBOTTOM] = y
	}
	if y > box[BOXTOP] {
		box[BOXTOP] = y
	}
}

// PointInSubsector walks the tree from the root down to the subsector
// containing the point. Levels with a single subsector have no nodes
func (g *Geometry) PointInSubsector(x, y Fixed) int {
	if len(g.Nodes) == 0 {
		return 0
	}
	nodenum := len(g.Nodes) - 1
	for nodenum&NF_SUBSECTOR == 0 {
		node := &g.Nodes[nodenum]
		nodenum = node.Children[PointOnNodeSide(x, y, node)]
	}
	return nodenum &^ NF_SUBSECTOR
}

// PointInSector returns nil only for a level with no subsectors
func (g *Geometry) PointInSector(x, y Fixed) *MapSector {
	if len(g.Subsectors) == 0 {
		return nil
	}
	ss := g.PointInSubsector(x, y)
	if ss >= len(g.Subsectors) {
		return nil
	}
	return g.Subsectors[ss].Sector
}
