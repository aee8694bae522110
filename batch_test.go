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
	"errors"
	"sync"
	"testing"
)

func twoRoomsSetup(renderer int, keep bool) *FrameSetup {
	g := twoRooms()
	pairs := DetectPortalPairs(g)
	return &FrameSetup{
		Geom:       g,
		Pairs:      pairs,
		Proj:       NewProjection(160, 100, ANG90),
		Transform:  TransformViewpointPrecise,
		MaxDepth:   2,
		Renderer:   renderer,
		Portals:    pairs.Len() > 0,
		KeepBuffer: keep,
	}
}

var twoRoomsViews = []Viewpoint{
	twoRoomsStart,
	{X: IntToFixed(1100), Y: IntToFixed(128), Z: VIEWHEIGHT, Angle: ANG90},
	{X: IntToFixed(128), Y: IntToFixed(400), Z: VIEWHEIGHT, Angle: ANG270},
	{X: IntToFixed(1200), Y: IntToFixed(64), Z: VIEWHEIGHT, Angle: ANG45},
	{X: IntToFixed(64), Y: IntToFixed(256), Z: VIEWHEIGHT, Angle: 0},
}

func TestRenderFrameBoth(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_BOTH, true)
	rep := RenderFrame(setup, 0, twoRoomsStart, CreateMiniLogger())
	if !rep.Ok() {
		t.Errorf("frame not ok: stencil %v, queue %v", rep.StencilBalanced, rep.SWDrained)
	}
	if rep.GL == nil || rep.SW == nil {
		t.Fatalf("buffers not kept")
	}
	if rep.Portals(rep.GLPasses) < 2 || rep.Portals(rep.SWPasses) < 1 {
		t.Errorf("portal passes: hardware %v, software %v", rep.GLPasses, rep.SWPasses)
	}
	if rep.GLReleased != rep.Portals(rep.GLPasses) || rep.SWReleased != rep.Portals(rep.SWPasses) {
		t.Errorf("released %d/%d", rep.GLReleased, rep.SWReleased)
	}
	if rep.GLPixels == 0 || rep.SWPixels == 0 || rep.StencilWrites == 0 {
		t.Errorf("nothing drawn: %d, %d pixels, %d stencil writes", rep.GLPixels, rep.SWPixels,
			rep.StencilWrites)
	}
	if rep.GLStats.PortalSegs == 0 || rep.SWStats.PortalSegs == 0 {
		t.Errorf("walkers met no portal segs")
	}
}

func TestRenderFrameSoftwareOnly(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_SOFTWARE, false)
	rep := RenderFrame(setup, 3, twoRoomsStart, CreateMiniLogger())
	if rep.GLPasses != nil || rep.GLPixels != 0 {
		t.Errorf("hardware path ran")
	}
	if rep.SWPasses == nil || rep.SW != nil || rep.GL != nil {
		t.Errorf("software path didn't run, or buffers kept")
	}
	if rep.Index != 3 || !rep.Ok() {
		t.Errorf("report %+v", rep)
	}
}

func TestRenderFrameDepthWarning(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_BOTH, false)
	setup.MaxDepth = 0
	mlog := CreateMiniLogger()
	rep := RenderFrame(setup, 0, twoRoomsStart, mlog)
	if rep.GLSkipped == 0 || rep.SWSkipped == 0 {
		t.Errorf("skipped %d/%d", rep.GLSkipped, rep.SWSkipped)
	}
	if len(mlog.slots) <= SLOT_DEPTH_LIMIT || mlog.slots[SLOT_DEPTH_LIMIT] == "" {
		t.Errorf("depth limit warning not pushed")
	}
	if !rep.Ok() {
		t.Errorf("frame not ok")
	}
}

func TestRenderBatch(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_BOTH, true)
	var mu sync.Mutex
	seen := make(map[int]bool)
	sink := func(rep *FrameReport) error {
		if rep.GL == nil || rep.SW == nil {
			t.Errorf("frame %d: sink got no buffers", rep.Index)
		}
		mu.Lock()
		seen[rep.Index] = true
		mu.Unlock()
		return nil
	}
	reports, err := RenderBatch(context.Background(), setup, twoRoomsViews, 2, sink)
	if err != nil {
		t.Fatalf("RenderBatch: %s", err.Error())
	}
	if len(reports) != len(twoRoomsViews) || len(seen) != len(twoRoomsViews) {
		t.Fatalf("%d reports, %d frames sunk", len(reports), len(seen))
	}
	for i, rep := range reports {
		if rep.Index != i || rep.View != twoRoomsViews[i] {
			t.Errorf("report %d out of order", i)
		}
		if !rep.Ok() {
			t.Errorf("frame %d not ok", i)
		}
		if rep.GL != nil || rep.SW != nil {
			t.Errorf("frame %d: buffers kept after sink", i)
		}
	}
	if !PrintReport(reports, setup) {
		t.Errorf("PrintReport reported failure")
	}
}

func TestRenderBatchSinkError(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_HARDWARE, true)
	errDisk := errors.New("disk full")
	sink := func(rep *FrameReport) error {
		if rep.Index == 1 {
			return errDisk
		}
		return nil
	}
	reports, err := RenderBatch(context.Background(), setup, twoRoomsViews, 1, sink)
	if !errors.Is(err, errDisk) || reports != nil {
		t.Errorf("got %v, %v", reports, err)
	}
}

func TestRenderBatchCancelled(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_BOTH, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderBatch(ctx, setup, twoRoomsViews, 0, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled batch: %v", err)
	}
}

func TestPrintReportUnbalanced(t *testing.T) {
	setup := twoRoomsSetup(RENDERER_BOTH, false)
	rep := RenderFrame(setup, 0, twoRoomsStart, CreateMiniLogger())
	rep.StencilBalanced = false
	if PrintReport([]*FrameReport{rep}, setup) {
		t.Errorf("unbalanced frame reported ok")
	}
}
