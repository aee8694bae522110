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

// The portal code drives a scene walker and a rasterizer, but owns neither.
// These interfaces are all it needs from them.

// StencilState tells the rasterizer what drawn geometry does to the stencil
// and depth buffers
type StencilState int

const (
	// draw normally, only where stencil equals the level
	STENCIL_NORMAL StencilState = iota
	// increment stencil where it equals the level, no color, no depth
	STENCIL_BEGIN
	// decrement stencil where it equals level+1, no color, no depth
	STENCIL_REVERSE
	// write depth only where stencil equals the level
	STENCIL_DEPTH
)

var stencilStateNames = [...]string{"normal", "begin", "reverse", "depth"}

func (s StencilState) String() string {
	if int(s) < 0 || int(s) >= len(stencilStateNames) {
		return "unknown"
	}
	return stencilStateNames[s]
}

// GLBackend is the rasterizer side of hardware rendering
type GLBackend interface {
	// SetTransform points the camera at view
	SetTransform(view Viewpoint)
	// ClearClipper empties the angular clipper, leaving only the field of
	// view boundaries closed
	ClearClipper()
	// AddClipRange marks angles from a1 counterclockwise to a2 as occluded.
	// The range may wrap over angle 0
	AddClipRange(a1, a2 Angle)
	SetStencilState(state StencilState, level int)
	// ResetBlend restores blending after a stencil or depth only draw
	ResetBlend()
}

// PortalCollector receives entrance segs met during a scene walk. The
// walker doesn't draw a seg it has reported, it is up to the collector to
// register it as portal
type PortalCollector interface {
	PortalSeg(seg *MapSeg, exitLine int)
}

// GLScene is the hardware BSP walk
type GLScene interface {
	// WalkScene renders one scene pass from ctx.View. Portal segs are
	// reported to portals when ctx.Mode is GLPORTAL_SEARCH
	WalkScene(ctx *RenderContext, portals PortalCollector)
	// ProcessSeg draws a single seg in whatever stencil state is current
	ProcessSeg(ctx *RenderContext, seg *MapSeg)
}

// SoftPortalCollector is the software counterpart of PortalCollector: the
// walker reports the screen columns [x1, x2) the seg covers, and collector
// snapshots the clip state over them before the walker closes them
type SoftPortalCollector interface {
	PortalColumns(seg *MapSeg, exitLine int, x1, x2 int, clip *ClipColumns)
}

// SoftScene is the software BSP walk. It draws only within clip, and updates
// it as walls are drawn
type SoftScene interface {
	WalkScene(ctx *RenderContext, clip *ClipColumns, portals SoftPortalCollector)
}
