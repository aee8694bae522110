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

// SWProbeScene walks the level for the software path. Walls are "drawn" by
// tagging pixels of Frame with the pass that drew them and narrowing the clip
// columns, the way R_StoreWallRange would leave them.
type SWProbeScene struct {
	proj    Projection
	clipper AngleClipper
	walker  *probeWalker
	// Frame has 1 + recursion depth of the pass that drew each pixel
	Frame []uint8
}

func NewSWProbeScene(geom *Geometry, pairs *PortalPairs, proj Projection) *SWProbeScene {
	s := &SWProbeScene{
		proj:  proj,
		Frame: make([]uint8, proj.Width*proj.Height),
	}
	s.walker = newProbeWalker(geom, pairs, &s.clipper)
	return s
}

func (s *SWProbeScene) Stats() WalkStats {
	return s.walker.stats
}

func (s *SWProbeScene) WalkScene(ctx *RenderContext, clip *ClipColumns, portals SoftPortalCollector) {
	view := ctx.View
	// only the window of the pass is of interest
	s.clipper.Clear()
	s.clipper.SafeAddClipRange(s.proj.ColumnEdgeAngle(view, ctx.ClipStart),
		s.proj.ColumnEdgeAngle(view, ctx.ClipEnd))

	s.walker.walk(ctx, func(seg *MapSeg, exitLine int, angle1, angle2 Angle) bool {
		x1, x2, ok := s.proj.SegColumns(view, seg, 0, s.proj.Width)
		if !ok || !ctx.ColumnsInWindow(x1, x2) {
			return isSolid(seg)
		}
		x1, x2 = max(x1, ctx.ClipStart), min(x2, ctx.ClipEnd)
		if exitLine >= 0 && portals != nil {
			portals.PortalColumns(seg, exitLine, x1, x2, clip)
			clip.Close(x1, x2)
			return true
		}
		s.storeWallRange(ctx, seg, x1, x2, clip)
		return isSolid(seg)
	})
}

func (s *SWProbeScene) storeWallRange(ctx *RenderContext, seg *MapSeg, x1, x2 int, clip *ClipColumns) {
	view := ctx.View
	tag := uint8(ctx.Depth + 1)
	front, back := seg.FrontSector, seg.BackSector
	if front == nil {
		return
	}
	solid := isSolid(seg)
	for x := x1; x < x2; x++ {
		if !clip.Open(x) {
			continue
		}
		depth, ok := s.proj.WallDepth(view, seg.V1, seg.V2, x)
		if !ok {
			continue
		}
		clip.FrontScale[x] = s.proj.Scale(depth)
		top := int(clip.Ceiling[x]) + 1
		bottom := int(clip.Floor[x])
		if solid {
			// ceiling, wall and floor all the way
			s.fill(x, top, bottom, tag)
			clip.Ceiling[x] = int16(clip.ViewHeight)
			clip.Floor[x] = -1
			continue
		}
		// upper and lower walls, with planes above and below them
		hi := front.CeilingHeight
		if back.CeilingHeight < hi {
			hi = back.CeilingHeight
		}
		lo := front.FloorHeight
		if back.FloorHeight > lo {
			lo = back.FloorHeight
		}
		y1, y2 := s.proj.RowSpan(view, hi, lo, depth)
		if y1 > top {
			if y1 > bottom {
				y1 = bottom
			}
			s.fill(x, top, y1, tag)
			clip.Ceiling[x] = int16(y1 - 1)
		}
		if y2 < bottom {
			if y2 < top {
				y2 = top
			}
			s.fill(x, y2, bottom, tag)
			clip.Floor[x] = int16(y2)
		}
	}
}

func (s *SWProbeScene) fill(x, y1, y2 int, tag uint8) {
	w := s.proj.Width
	for y := y1; y < y2; y++ {
		s.Frame[y*w+x] = tag
	}
}
