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
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// FrameSetup is everything a frame needs besides its viewpoint. It is
// shared by all frames of a batch and never modified by them
type FrameSetup struct {
	Geom       *Geometry
	Pairs      *PortalPairs
	Proj       Projection
	Transform  TransformFunc
	MaxDepth   int
	Renderer   int
	Portals    bool
	KeepBuffer bool // keep buffers in report for dumping them
}

// NewFrameSetup takes the options from config
func NewFrameSetup(geom *Geometry, pairs *PortalPairs) *FrameSetup {
	return &FrameSetup{
		Geom:       geom,
		Pairs:      pairs,
		Proj:       NewProjection(config.ScreenWidth, config.ScreenHeight, DegreesToAngle(float64(config.FieldOfView))),
		Transform:  config.Transform,
		MaxDepth:   config.MaxPortalDepth,
		Renderer:   config.Renderer,
		Portals:    pairs.Len() > 0,
		KeepBuffer: config.DumpPrefix != "",
	}
}

// FrameReport is what was found out rendering one frame
type FrameReport struct {
	Index int
	View  Viewpoint

	// hardware path
	GLPasses        []int // passes per recursion depth, [0] is the player view
	GLSkipped       int
	GLReleased      int
	GLStats         WalkStats
	GLPixels        int
	StencilWrites   int
	StencilBalanced bool

	// software path
	SWPasses   []int
	SWSkipped  int
	SWReleased int
	SWStats    WalkStats
	SWPixels   int
	SWDrained  bool

	// filled when FrameSetup.KeepBuffer
	GL *SimGL
	SW *SWProbeScene
}

// Portals is how many portals were rendered through on the given path
func (r *FrameReport) Portals(passes []int) int {
	n := 0
	for i := 1; i < len(passes); i++ {
		n += passes[i]
	}
	return n
}

// Ok tells whether the frame left all the state it should have left behind
func (r *FrameReport) Ok() bool {
	return r.StencilBalanced && r.SWDrained
}

// Slots of the Push log, so that a warning repeating for many frames is only
// shown once
const (
	SLOT_DEPTH_LIMIT = iota
	SLOT_UNBALANCED
)

// RenderFrame renders one frame with the renderers chosen in setup
func RenderFrame(setup *FrameSetup, index int, view Viewpoint, log *MiniLogger) *FrameReport {
	rep := &FrameReport{
		Index:           index,
		View:            view,
		StencilBalanced: true,
		SWDrained:       true,
	}
	player := PlayerFrame(setup.Geom, view, setup.Proj.Width)
	if setup.Renderer&RENDERER_HARDWARE != 0 {
		renderFrameGL(setup, player, rep, log)
	}
	if setup.Renderer&RENDERER_SOFTWARE != 0 {
		renderFrameSW(setup, player, rep, log)
	}
	if rep.GLSkipped > 0 || rep.SWSkipped > 0 {
		log.Push(SLOT_DEPTH_LIMIT, "Warning: portals deeper than %d were not rendered in some frames (use -d to raise the limit).\n",
			setup.MaxDepth)
	}
	return rep
}

func renderFrameGL(setup *FrameSetup, player RenderContext, rep *FrameReport, log *MiniLogger) {
	gl := NewSimGL(setup.Proj)
	scene := NewGLProbeScene(setup.Geom, setup.Pairs, gl)
	r := NewGLRenderer(setup.Geom, setup.Transform, setup.MaxDepth, gl, scene, log)
	r.RenderFrame(player, setup.Portals)

	rep.GLPasses = r.Passes
	rep.GLSkipped = r.Skipped
	rep.GLReleased = r.Released
	rep.GLStats = scene.Stats()
	rep.GLPixels = gl.PixelsDrawn
	rep.StencilWrites = gl.StencilWrites
	for i, s := range gl.Stencil {
		if s != 0 {
			rep.StencilBalanced = false
			log.Printf("Frame %d: stencil left at %d at pixel (%d,%d)\n", rep.Index, s,
				i%setup.Proj.Width, i/setup.Proj.Width)
			log.Push(SLOT_UNBALANCED, "Error: stencil buffer was not restored in some frames.\n")
			break
		}
	}
	if gl.StencilLevel() != 0 || gl.State() != STENCIL_NORMAL {
		rep.StencilBalanced = false
		log.Printf("Frame %d: frame ended with stencil state %s at level %d\n",
			rep.Index, gl.State().String(), gl.StencilLevel())
	}
	if setup.KeepBuffer {
		rep.GL = gl
	}
}

func renderFrameSW(setup *FrameSetup, player RenderContext, rep *FrameReport, log *MiniLogger) {
	scene := NewSWProbeScene(setup.Geom, setup.Pairs, setup.Proj)
	clip := NewClipColumns(setup.Proj.Width, setup.Proj.Height)
	r := NewSWRenderer(setup.Geom, setup.Transform, setup.MaxDepth, scene, log)
	r.RenderFrame(player, clip, setup.Portals)

	rep.SWPasses = r.Passes
	rep.SWSkipped = r.Skipped
	rep.SWReleased = r.Released()
	rep.SWStats = scene.Stats()
	for _, tag := range scene.Frame {
		if tag != 0 {
			rep.SWPixels++
		}
	}
	queued := rep.Portals(r.Passes)
	if r.Pending() != 0 || rep.SWReleased != queued {
		rep.SWDrained = false
		log.Printf("Frame %d: %d portals pending, %d released out of %d rendered\n",
			rep.Index, r.Pending(), rep.SWReleased, queued)
	}
	if setup.KeepBuffer {
		rep.SW = scene
	}
}

// FrameSink receives every frame once it is rendered, from the goroutine
// that rendered it. Used to write dumps without keeping all buffers around
type FrameSink func(rep *FrameReport) error

// RenderBatch renders the frames concurrently, at most threads at a time
// (all cores if threads is 0). Reports are in the order of views, and so is
// the log output of frames
func RenderBatch(ctx context.Context, setup *FrameSetup, views []Viewpoint,
	threads int, sink FrameSink) ([]*FrameReport, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	reports := make([]*FrameReport, len(views))
	mlogs := make([]*MiniLogger, len(views))
	var done int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := range views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mlogs[i] = CreateMiniLogger()
			rep := RenderFrame(setup, i, views[i], mlogs[i])
			if sink != nil {
				if err := sink(rep); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				rep.GL = nil
				rep.SW = nil
			}
			reports[i] = rep
			Log.Progress(int(atomic.AddInt32(&done, 1)), len(views))
			return nil
		})
	}
	err := g.Wait()
	for i, mlog := range mlogs {
		if mlog == nil {
			continue
		}
		preface := ""
		if len(mlog.String()) > 0 {
			preface = fmt.Sprintf("Frame %d:\n", i)
		}
		Log.Merge(mlog, preface)
	}
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// PrintReport writes per frame lines and the totals
func PrintReport(reports []*FrameReport, setup *FrameSetup) bool {
	ok := true
	var glTotal, swTotal WalkStats
	for _, rep := range reports {
		Log.Printf("Frame %d at (%d, %d, %d) facing %.1f deg:\n", rep.Index,
			rep.View.X.Int(), rep.View.Y.Int(), rep.View.Z.Int(), rep.View.Angle.Degrees())
		if setup.Renderer&RENDERER_HARDWARE != 0 {
			Log.Printf("  hardware: passes %v, portals %d, skipped %d, %d pixels, stencil %s\n",
				rep.GLPasses, rep.Portals(rep.GLPasses), rep.GLSkipped, rep.GLPixels,
				balanceString(rep.StencilBalanced))
			Log.Verbose(1, "    nodes %d visited, %d culled by portal clip line, %d occluded; segs %d drawn, %d culled, %d portal\n",
				rep.GLStats.NodesVisited, rep.GLStats.NodesCulled, rep.GLStats.NodesOccluded,
				rep.GLStats.SegsDrawn, rep.GLStats.SegsCulled, rep.GLStats.PortalSegs)
			glTotal.Add(rep.GLStats)
		}
		if setup.Renderer&RENDERER_SOFTWARE != 0 {
			Log.Printf("  software: passes %v, portals %d, skipped %d, %d pixels, queue %s\n",
				rep.SWPasses, rep.Portals(rep.SWPasses), rep.SWSkipped, rep.SWPixels,
				drainString(rep.SWDrained))
			Log.Verbose(1, "    nodes %d visited, %d culled by portal clip line, %d occluded; segs %d drawn, %d culled, %d portal\n",
				rep.SWStats.NodesVisited, rep.SWStats.NodesCulled, rep.SWStats.NodesOccluded,
				rep.SWStats.SegsDrawn, rep.SWStats.SegsCulled, rep.SWStats.PortalSegs)
			swTotal.Add(rep.SWStats)
		}
		ok = ok && rep.Ok()
	}
	if len(reports) > 1 {
		if setup.Renderer&RENDERER_HARDWARE != 0 {
			Log.Printf("Hardware total: %d nodes culled by portal clip lines, %d segs culled\n",
				glTotal.NodesCulled, glTotal.SegsCulled)
		}
		if setup.Renderer&RENDERER_SOFTWARE != 0 {
			Log.Printf("Software total: %d nodes culled by portal clip lines, %d segs culled\n",
				swTotal.NodesCulled, swTotal.SegsCulled)
		}
	}
	return ok
}

func balanceString(b bool) string {
	if b {
		return "balanced"
	}
	return "NOT BALANCED"
}

func drainString(b bool) string {
	if b {
		return "drained"
	}
	return "NOT DRAINED"
}
