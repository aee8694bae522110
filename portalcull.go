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

// Culling against the clip line of the portal being rendered. Everything here
// over-accepts: the exact clip is done by the stencil or the clip columns.

// PointOnVisibleSide returns true unless the point is strictly behind the
// clip line. A point lying exactly on the line always passes.
func (ctx *RenderContext) PointOnVisibleSide(x, y Fixed) bool {
	if ctx.ClipLine == nil {
		return true
	}
	// A point is its own closest point on the line only if it is on the line
	if LineCrossSign(x, y, ctx.ClipLine) == 0 {
		return true
	}
	return PointOnLineSideExact(x, y, ctx.ClipLine) != 1
}

// BBoxVisible is a conservative test used to prune BSP subtrees: the box is
// rejected only if all four corners are behind the clip line. Boxes that
// straddle it pass
func (ctx *RenderContext) BBoxVisible(box *BBox) bool {
	if ctx.ClipLine == nil {
		return true
	}
	return ctx.PointOnVisibleSide(box[BOXLEFT], box[BOXTOP]) ||
		ctx.PointOnVisibleSide(box[BOXLEFT], box[BOXBOTTOM]) ||
		ctx.PointOnVisibleSide(box[BOXRIGHT], box[BOXTOP]) ||
		ctx.PointOnVisibleSide(box[BOXRIGHT], box[BOXBOTTOM])
}

// SegVisible rejects segs that are entirely behind the clip line
func (ctx *RenderContext) SegVisible(seg *MapSeg) bool {
	return ctx.PointOnVisibleSide(seg.V1.X, seg.V1.Y) ||
		ctx.PointOnVisibleSide(seg.V2.X, seg.V2.Y)
}

// ColumnsInWindow tells whether screen columns [x1, x2) overlap the window
// the software pass is confined to
func (ctx *RenderContext) ColumnsInWindow(x1, x2 int) bool {
	return x1 < ctx.ClipEnd && x2 > ctx.ClipStart
}
