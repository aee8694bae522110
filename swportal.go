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

// Software portal rendering. There is no stencil buffer: the window of a
// portal is the range of screen columns its entrance seg covered, together
// with how much of each column was still open at the time. Portals are
// queued while the scene is walked and rendered afterwards, each pass being
// confined to its window by the clip columns.

// ClipColumns is the per column clipping state of the software renderer.
// Rows strictly between Ceiling[x] and Floor[x] can still be drawn
type ClipColumns struct {
	Ceiling    []int16
	Floor      []int16
	FrontScale []Fixed
	ViewHeight int
	Width      int
}

func NewClipColumns(width, viewHeight int) *ClipColumns {
	c := &ClipColumns{
		Ceiling:    make([]int16, width),
		Floor:      make([]int16, width),
		FrontScale: make([]Fixed, width),
		ViewHeight: viewHeight,
		Width:      width,
	}
	c.Reset()
	return c
}

// Reset opens every column
func (c *ClipColumns) Reset() {
	for x := 0; x < c.Width; x++ {
		c.Ceiling[x] = -1
		c.Floor[x] = int16(c.ViewHeight)
		c.FrontScale[x] = 0
	}
}

func (c *ClipColumns) CopyFrom(other *ClipColumns) {
	copy(c.Ceiling, other.Ceiling)
	copy(c.Floor, other.Floor)
	copy(c.FrontScale, other.FrontScale)
}

func (c *ClipColumns) Clone() *ClipColumns {
	n := NewClipColumns(c.Width, c.ViewHeight)
	n.CopyFrom(c)
	return n
}

// Open tells whether any row of column x may still be drawn
func (c *ClipColumns) Open(x int) bool {
	return c.Ceiling[x] < c.Floor[x]-1
}

// Close marks columns [x1, x2) as fully drawn
func (c *ClipColumns) Close(x1, x2 int) {
	for x := x1; x < x2; x++ {
		c.Ceiling[x] = int16(c.ViewHeight)
		c.Floor[x] = -1
	}
}

// SWRenderer is the software render orchestrator
type SWRenderer struct {
	portalMaker
	scene SoftScene
	log   Logger
	queue *PortalRing

	Passes   []int
	Skipped  int
	released int
}

func NewSWRenderer(geom *Geometry, transform TransformFunc, maxDepth int,
	scene SoftScene, log Logger) *SWRenderer {
	return &SWRenderer{
		portalMaker: portalMaker{
			geom:      geom,
			transform: transform,
			maxDepth:  maxDepth,
		},
		scene:  scene,
		log:    log,
		queue:  CreatePortalRing(16),
		Passes: make([]int, maxDepth+1),
	}
}

// AddPortalFromLines queues a portal for line1 leading to line2, seen over
// columns [x1, x2). The clip state of those columns is saved in the portal
func (r *SWRenderer) AddPortalFromLines(ctx *RenderContext, line1, line2 int,
	x1, x2 int, clip *ClipColumns) (*Portal, error) {
	if x1 < 0 {
		x1 = 0
	}
	if x2 > clip.Width {
		x2 = clip.Width
	}
	if x1 >= x2 {
		return nil, nil
	}
	portal, _, err := r.newPortal(ctx, line1, line2)
	if err != nil {
		return nil, err
	}
	portal.Start = x1
	portal.End = x2
	portal.CeilingClip = append([]int16(nil), clip.Ceiling[x1:x2]...)
	portal.FloorClip = append([]int16(nil), clip.Floor[x1:x2]...)
	portal.FrontScale = append([]Fixed(nil), clip.FrontScale[x1:x2]...)
	r.queue.Enqueue(portal)
	return portal, nil
}

// ClipApply installs the portal's saved window into clip and closes off
// every column outside of it
func (r *SWRenderer) ClipApply(portal *Portal, clip *ClipColumns) {
	for x := 0; x < portal.Start; x++ {
		clip.Floor[x] = -1
		clip.Ceiling[x] = int16(clip.ViewHeight)
	}
	for x := portal.Start; x < portal.End; x++ {
		clip.Ceiling[x] = portal.CeilingClip[x-portal.Start]
		clip.Floor[x] = portal.FloorClip[x-portal.Start]
		clip.FrontScale[x] = portal.FrontScale[x-portal.Start]
	}
	for x := portal.End; x < clip.Width; x++ {
		clip.Floor[x] = -1
		clip.Ceiling[x] = int16(clip.ViewHeight)
	}
}

// Remove frees the portal at the head of the queue, once its pass has been
// rendered
func (r *SWRenderer) Remove(portal *Portal) {
	if r.queue.Front() != portal {
		Log.Panic("Portal from line %d removed out of order\n", portal.StartLine)
	}
	r.queue.Dequeue().release()
	r.released++
}

// Released is the number of portals freed so far
func (r *SWRenderer) Released() int {
	return r.released
}

// Pending is the number of portals waiting to be rendered
func (r *SWRenderer) Pending() int {
	return int(r.queue.Size())
}

// RenderFrame renders the player view into clip, then every portal
// discovered, in discovery order. Portals seen through portals are appended
// to the same queue one pass deeper. clip is left as the player view left it
func (r *SWRenderer) RenderFrame(player RenderContext, clip *ClipColumns, allowPortals bool) {
	player.Root = nil
	player.ClipLine = nil
	player.Depth = 0
	player.AllowPortals = allowPortals
	player.ClipStart = 0
	player.ClipEnd = clip.Width
	clip.Reset()
	r.pass(&player, clip)

	if r.queue.Empty() {
		return
	}
	ambient := clip.Clone()
	for !r.queue.Empty() {
		portal := r.queue.Front()
		ctx := player.PortalFrame(r.geom, portal)
		r.ClipApply(portal, clip)
		r.pass(&ctx, clip)
		r.Remove(portal)
		clip.CopyFrom(ambient)
	}
}

func (r *SWRenderer) pass(ctx *RenderContext, clip *ClipColumns) {
	if ctx.Depth < len(r.Passes) {
		r.Passes[ctx.Depth]++
	}
	r.scene.WalkScene(ctx, clip, &swCollector{r: r, ctx: ctx})
}

type swCollector struct {
	r   *SWRenderer
	ctx *RenderContext
}

func (c *swCollector) PortalColumns(seg *MapSeg, exitLine int, x1, x2 int, clip *ClipColumns) {
	_, err := c.r.AddPortalFromLines(c.ctx, seg.LineIndex, exitLine, x1, x2, clip)
	if err == nil {
		return
	}
	if errors.Is(err, ErrRecursionLimit) {
		c.r.Skipped++
		c.r.log.Verbose(3, "Portal at line %d not rendered at depth %d: %s\n",
			seg.LineIndex, c.ctx.Depth, err.Error())
		return
	}
	Log.Panic("Portal at line %d: %s\n", seg.LineIndex, err.Error())
}
