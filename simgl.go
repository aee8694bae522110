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
	"math"
)

// SimGL is a software stand-in for the hardware rasterizer: it keeps the
// stencil and depth buffers a GL context would, applies the stencil states
// to walls drawn into it, and records which pass drew every pixel. It draws
// nothing but flat walls, which is all the portal code cares about.
type SimGL struct {
	proj    Projection
	Clipper AngleClipper
	Stencil []uint8
	Depth   []float32
	// PassBuf holds 1 + the recursion depth of the pass that last colored
	// the pixel, 0 if nothing did
	PassBuf []uint8

	view  Viewpoint
	state StencilState
	level int
	blend bool

	StencilWrites int
	PixelsDrawn   int
	DepthOnly     int
}

const farDepth = float32(math.MaxFloat32)

func NewSimGL(proj Projection) *SimGL {
	n := proj.Width * proj.Height
	gl := &SimGL{
		proj:    proj,
		Stencil: make([]uint8, n),
		Depth:   make([]float32, n),
		PassBuf: make([]uint8, n),
		blend:   true,
	}
	gl.Clear()
	return gl
}

// Clear starts a new frame
func (gl *SimGL) Clear() {
	for i := range gl.Stencil {
		gl.Stencil[i] = 0
		gl.Depth[i] = farDepth
		gl.PassBuf[i] = 0
	}
	gl.state = STENCIL_NORMAL
	gl.level = 0
}

func (gl *SimGL) SetTransform(view Viewpoint) {
	gl.view = view
}

func (gl *SimGL) ClearClipper() {
	gl.Clipper.Clear()
	gl.Clipper.ClipFieldOfView(gl.view.Angle, gl.proj.HalfFov)
}

func (gl *SimGL) AddClipRange(a1, a2 Angle) {
	gl.Clipper.SafeAddClipRange(a1, a2)
}

// SetStencilState switches what drawing does. Entering normal drawing at a
// level above 0 resets depth inside the portal window: whatever was behind
// the portal seg in the parent scene must not hide the scene seen through it
func (gl *SimGL) SetStencilState(state StencilState, level int) {
	if level < 0 || level > MAX_PORTAL_PASS {
		Log.Panic("Stencil level %d out of range\n", level)
	}
	gl.state = state
	gl.level = level
	if state == STENCIL_NORMAL && level > 0 {
		l := uint8(level)
		for i, s := range gl.Stencil {
			if s == l {
				gl.Depth[i] = farDepth
			}
		}
	}
	if state != STENCIL_NORMAL {
		gl.blend = false
	}
}

func (gl *SimGL) ResetBlend() {
	gl.blend = true
}

func (gl *SimGL) StencilLevel() int {
	return gl.level
}

func (gl *SimGL) State() StencilState {
	return gl.state
}

// StencilSnapshot copies the stencil buffer, for comparing before and after
func (gl *SimGL) StencilSnapshot() []uint8 {
	return append([]uint8(nil), gl.Stencil...)
}

// DrawWall rasterizes the part of the seg between heights bottom and top,
// at the given pass
func (gl *SimGL) DrawWall(seg *MapSeg, top, bottom Fixed, pass int) {
	if top <= bottom {
		return
	}
	p := &gl.proj
	l := uint8(gl.level)
	for x := 0; x < p.Width; x++ {
		depth, ok := p.WallDepth(gl.view, seg.V1, seg.V2, x)
		if !ok {
			continue
		}
		d := float32(depth)
		y1, y2 := p.RowSpan(gl.view, top, bottom, depth)
		for y := y1; y < y2; y++ {
			i := y*p.Width + x
			switch gl.state {
			case STENCIL_BEGIN:
				if gl.Stencil[i] == l && d <= gl.Depth[i] {
					gl.Stencil[i]++
					gl.StencilWrites++
				}
			case STENCIL_REVERSE:
				if gl.Stencil[i] == l+1 {
					gl.Stencil[i]--
					gl.StencilWrites++
				}
			case STENCIL_DEPTH:
				if gl.Stencil[i] == l && d < gl.Depth[i] {
					gl.Depth[i] = d
					gl.DepthOnly++
				}
			default:
				if gl.Stencil[i] == l && d < gl.Depth[i] {
					gl.Depth[i] = d
					gl.PassBuf[i] = uint8(pass + 1)
					gl.PixelsDrawn++
				}
			}
		}
	}
}

// GLProbeScene walks the level for the hardware path and draws into SimGL
type GLProbeScene struct {
	gl     *SimGL
	walker *probeWalker
}

func NewGLProbeScene(geom *Geometry, pairs *PortalPairs, gl *SimGL) *GLProbeScene {
	return &GLProbeScene{
		gl:     gl,
		walker: newProbeWalker(geom, pairs, &gl.Clipper),
	}
}

func (s *GLProbeScene) Stats() WalkStats {
	return s.walker.stats
}

func (s *GLProbeScene) WalkScene(ctx *RenderContext, portals PortalCollector) {
	s.walker.walk(ctx, func(seg *MapSeg, exitLine int, angle1, angle2 Angle) bool {
		if exitLine >= 0 && ctx.Mode == GLPORTAL_SEARCH && portals != nil {
			portals.PortalSeg(seg, exitLine)
			// window stays open in the clipper only for the portal's own pass
			return true
		}
		s.ProcessSeg(ctx, seg)
		return isSolid(seg)
	})
}

func (s *GLProbeScene) ProcessSeg(ctx *RenderContext, seg *MapSeg) {
	front := seg.FrontSector
	if front == nil {
		return
	}
	if ctx.DrawingStencil || seg.BackSector == nil {
		s.gl.DrawWall(seg, front.CeilingHeight, front.FloorHeight, ctx.Depth)
		return
	}
	back := seg.BackSector
	if back.CeilingHeight < front.CeilingHeight {
		s.gl.DrawWall(seg, front.CeilingHeight, back.CeilingHeight, ctx.Depth)
	}
	if back.FloorHeight > front.FloorHeight {
		s.gl.DrawWall(seg, back.FloorHeight, front.FloorHeight, ctx.Depth)
	}
}
