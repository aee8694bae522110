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
)

// Hardware portal rendering: every portal window is marked in the stencil
// buffer by drawing its entrance seg, the scene behind it is rendered at the
// next stencil level, then the mark is removed and the seg is written to the
// depth buffer so that the parent scene is occluded by the window.

// PortalState is what the scene walk should do with what it draws
type PortalState int

const (
	GLPORTAL_OFF     PortalState = iota // portals disabled, draw everything
	GLPORTAL_SEARCH                     // draw, and collect portal segs
	GLPORTAL_STENCIL                    // drawing a portal seg into stencil
	GLPORTAL_DEPTH                      // drawing a portal seg into depth
	GLPORTAL_INSIDE                     // rendering through a portal, no more portals
)

var portalStateNames = [...]string{"off", "search", "stencil", "depth", "inside"}

func (s PortalState) String() string {
	if int(s) < 0 || int(s) >= len(portalStateNames) {
		return "unknown"
	}
	return portalStateNames[s]
}

// GLRenderer is the hardware render orchestrator. It holds no per-pass
// state: everything that changes between passes is in RenderContext
type GLRenderer struct {
	portalMaker
	backend GLBackend
	scene   GLScene
	player  RenderContext
	log     Logger

	// Passes counts recursive passes per depth, for the frame report
	Passes  []int
	Skipped int // portals not rendered due to the depth limit
	// Released is the number of portal records freed during the frame
	Released int
}

func NewGLRenderer(geom *Geometry, transform TransformFunc, maxDepth int,
	backend GLBackend, scene GLScene, log Logger) *GLRenderer {
	return &GLRenderer{
		portalMaker: portalMaker{
			geom:      geom,
			transform: transform,
			maxDepth:  maxDepth,
		},
		backend: backend,
		scene:   scene,
		log:     log,
		Passes:  make([]int, maxDepth+1),
	}
}

// RenderFrame renders everything visible from the player's viewpoint, and
// through the portals seen from there
func (r *GLRenderer) RenderFrame(player RenderContext, allowPortals bool) {
	r.player = player
	r.player.ClipLine = nil
	r.player.Root = nil
	r.player.Depth = 0
	r.player.StencilLevel = 0
	r.RenderViewpoint(r.player, allowPortals)
}

// RenderViewpoint renders one scene pass from ctx.View, restricted to the
// stencil level ctx.StencilLevel, then renders every portal discovered
// during the pass one level deeper
func (r *GLRenderer) RenderViewpoint(ctx RenderContext, allowPortals bool) {
	if ctx.Depth < len(r.Passes) {
		r.Passes[ctx.Depth]++
	}
	ctx.AllowPortals = allowPortals
	r.backend.SetTransform(ctx.View)
	r.backend.ClearClipper()
	if ctx.Root != nil {
		r.PortalClipping(ctx.Root)
	}
	r.backend.SetStencilState(STENCIL_NORMAL, ctx.StencilLevel)

	var portals PortalList
	collector := &glCollector{r: r, ctx: &ctx, list: &portals}
	if allowPortals {
		ctx.Mode = GLPORTAL_SEARCH
	} else if ctx.Root != nil {
		ctx.Mode = GLPORTAL_INSIDE
	} else {
		ctx.Mode = GLPORTAL_OFF
	}
	r.scene.WalkScene(&ctx, collector)

	if portals.Len() > 0 {
		r.log.Verbose(2, "Pass %d found %d portals\n", ctx.Depth, portals.Len())
	}
	for _, portal := range portals.Portals() {
		r.RenderPortal(ctx, portal, ctx.Root)
	}
	portals.Release(&ctx)
	r.Released += portals.Released()

	// back to normal drawing at this level for what the caller does next
	r.backend.SetStencilState(STENCIL_NORMAL, ctx.StencilLevel)
}

// PortalClipping closes the clipper outside the portal's window
func (r *GLRenderer) PortalClipping(portal *Portal) {
	r.backend.AddClipRange(portal.Angle1, portal.Angle2)
}

// RenderPortal renders a single portal from the viewpoint of parent. root is
// the portal parent itself was rendered through, nil for the player view.
// Stencil buffer contents are the same on return as they were on entry
func (r *GLRenderer) RenderPortal(parent RenderContext, portal *Portal, root *Portal) {
	level := parent.StencilLevel

	// mark the window
	r.backend.SetTransform(parent.View)
	r.backend.ClearClipper()
	r.backend.SetStencilState(STENCIL_BEGIN, level)
	r.renderPortalSeg(parent, portal, GLPORTAL_STENCIL)

	// render through it
	child := parent.PortalFrame(r.geom, portal)
	child.StencilLevel = level + 1
	r.RenderViewpoint(child, true)

	// return to the current frame
	var cur RenderContext
	if root != nil {
		cur = parent
	} else {
		cur = r.player
		cur.ClipLine = nil
	}
	cur.StencilLevel = level

	// unmark the window
	r.backend.SetTransform(cur.View)
	r.backend.ClearClipper()
	r.backend.SetStencilState(STENCIL_REVERSE, level)
	r.renderPortalSeg(cur, portal, GLPORTAL_STENCIL)

	// and occlude the parent scene with it
	r.backend.ClearClipper()
	r.backend.SetStencilState(STENCIL_DEPTH, level)
	r.renderPortalSeg(cur, portal, GLPORTAL_DEPTH)
}

func (r *GLRenderer) renderPortalSeg(ctx RenderContext, portal *Portal, state PortalState) {
	ctx.DrawingStencil = true
	ctx.Mode = state
	r.scene.ProcessSeg(&ctx, portal.Seg)
	r.backend.ResetBlend()
}

// AddPortalFromLines registers a portal found at seg, whose line is line1,
// leading to line2, into list. The window angles are computed from the
// viewpoint in ctx
func (r *GLRenderer) AddPortalFromLines(list *PortalList, ctx *RenderContext,
	line1, line2 int, seg *MapSeg) (*Portal, error) {
	portal, dangle, err := r.newPortal(ctx, line1, line2)
	if err != nil {
		return nil, err
	}
	portal.Seg = seg
	portal.Angle1 = PointToAngle2(ctx.View.X, ctx.View.Y, seg.V1.X, seg.V1.Y) + dangle
	portal.Angle2 = PointToAngle2(ctx.View.X, ctx.View.Y, seg.V2.X, seg.V2.Y) + dangle
	list.append(portal)
	return portal, nil
}

type glCollector struct {
	r    *GLRenderer
	ctx  *RenderContext
	list *PortalList
}

func (c *glCollector) PortalSeg(seg *MapSeg, exitLine int) {
	_, err := c.r.AddPortalFromLines(c.list, c.ctx, seg.LineIndex, exitLine, seg)
	if err == nil {
		return
	}
	if errors.Is(err, ErrRecursionLimit) {
		c.r.Skipped++
		c.r.log.Verbose(3, "Portal at line %d not rendered at depth %d: %s\n",
			seg.LineIndex, c.ctx.Depth, err.Error())
		return
	}
	// pairs were validated at load time
	Log.Panic("Portal at line %d: %s\n", seg.LineIndex, err.Error())
}
