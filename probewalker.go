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

// Front to back BSP walk in the manner of R_RenderBSPNode, reduced to what is
// needed to exercise portals: angular occlusion by solid walls, bounding box
// rejection (both by occlusion and by the portal clip line), and reporting of
// portal segs. It doesn't know how walls are drawn, that's for the caller.

// checkcoord picks the two bounding box corners that span the box as seen
// from the viewpoint, indexed by the viewpoint's position relative to the box
// (boxpos = boxy*4 + boxx)
var checkcoord = [12][4]int{
	{BOXRIGHT, BOXTOP, BOXLEFT, BOXBOTTOM},
	{BOXRIGHT, BOXTOP, BOXLEFT, BOXTOP},
	{BOXRIGHT, BOXBOTTOM, BOXLEFT, BOXTOP},
	{0, 0, 0, 0},
	{BOXLEFT, BOXTOP, BOXLEFT, BOXBOTTOM},
	{0, 0, 0, 0},
	{BOXRIGHT, BOXBOTTOM, BOXRIGHT, BOXTOP},
	{0, 0, 0, 0},
	{BOXLEFT, BOXTOP, BOXRIGHT, BOXBOTTOM},
	{BOXLEFT, BOXBOTTOM, BOXRIGHT, BOXBOTTOM},
	{BOXLEFT, BOXBOTTOM, BOXRIGHT, BOXTOP},
	{0, 0, 0, 0},
}

// WalkStats counts what a walk did, summed over all passes of a frame
type WalkStats struct {
	NodesVisited  int
	NodesCulled   int // rejected by the portal clip line
	NodesOccluded int // rejected by the angular clipper
	SegsDrawn     int
	SegsCulled    int // behind the portal clip line
	PortalSegs    int
}

func (s *WalkStats) Add(other WalkStats) {
	s.NodesVisited += other.NodesVisited
	s.NodesCulled += other.NodesCulled
	s.NodesOccluded += other.NodesOccluded
	s.SegsDrawn += other.SegsDrawn
	s.SegsCulled += other.SegsCulled
	s.PortalSegs += other.PortalSegs
}

// segVisitor is called for every seg that survived culling and occlusion, in
// front to back order. exitLine is -1 unless the seg is a portal entrance.
// Returning true occludes the seg's angular range for the rest of the walk
type segVisitor func(seg *MapSeg, exitLine int, angle1, angle2 Angle) bool

type probeWalker struct {
	geom    *Geometry
	pairs   *PortalPairs
	clipper *AngleClipper
	stats   WalkStats
	ctx     *RenderContext
	visit   segVisitor
}

func newProbeWalker(geom *Geometry, pairs *PortalPairs, clipper *AngleClipper) *probeWalker {
	return &probeWalker{
		geom:    geom,
		pairs:   pairs,
		clipper: clipper,
	}
}

// walk expects the clipper to be set up by the caller
func (w *probeWalker) walk(ctx *RenderContext, visit segVisitor) {
	w.ctx = ctx
	w.visit = visit
	if len(w.geom.Nodes) == 0 {
		if len(w.geom.Subsectors) > 0 {
			w.subsector(0)
		}
	} else {
		w.node(len(w.geom.Nodes) - 1)
	}
	w.ctx = nil
	w.visit = nil
}

func (w *probeWalker) node(nodenum int) {
	if w.clipper.Full() {
		return
	}
	if nodenum&NF_SUBSECTOR != 0 {
		w.subsector(nodenum &^ NF_SUBSECTOR)
		return
	}
	if nodenum >= len(w.geom.Nodes) {
		Log.Panic("Node %d out of range (have %d)\n", nodenum, len(w.geom.Nodes))
	}
	w.stats.NodesVisited++
	bsp := &w.geom.Nodes[nodenum]
	side := PointOnNodeSide(w.ctx.View.X, w.ctx.View.Y, bsp)
	w.child(bsp, side)
	w.child(bsp, side^1)
}

func (w *probeWalker) child(bsp *MapNode, side int) {
	box := &bsp.BBox[side]
	if !w.ctx.BBoxVisible(box) {
		w.stats.NodesCulled++
		return
	}
	if !w.checkBBox(box) {
		w.stats.NodesOccluded++
		return
	}
	w.node(bsp.Children[side])
}

// checkBBox tells whether some part of the box might be visible through the
// gaps left in the clipper
func (w *probeWalker) checkBBox(box *BBox) bool {
	x, y := w.ctx.View.X, w.ctx.View.Y
	var boxx, boxy int
	if x <= box[BOXLEFT] {
		boxx = 0
	} else if x < box[BOXRIGHT] {
		boxx = 1
	} else {
		boxx = 2
	}
	if y >= box[BOXTOP] {
		boxy = 0
	} else if y > box[BOXBOTTOM] {
		boxy = 1
	} else {
		boxy = 2
	}
	boxpos := boxy<<2 + boxx
	if boxpos == 5 {
		return true
	}
	c := &checkcoord[boxpos]
	angle1 := PointToAngle2(x, y, box[c[0]], box[c[1]])
	angle2 := PointToAngle2(x, y, box[c[2]], box[c[3]])
	if angle1-angle2 >= ANG180 {
		return true
	}
	return w.clipper.SafeCheckRange(angle2, angle1)
}

func (w *probeWalker) subsector(num int) {
	if num >= len(w.geom.Subsectors) {
		Log.Panic("Subsector %d out of range (have %d)\n", num,
			len(w.geom.Subsectors))
	}
	sub := &w.geom.Subsectors[num]
	for i := sub.FirstSeg; i < sub.FirstSeg+sub.NumSegs; i++ {
		seg, err := w.geom.Seg(i)
		if err != nil {
			Log.Panic("Subsector %d: %s\n", num, err.Error())
		}
		w.addLine(seg)
	}
}

func (w *probeWalker) addLine(seg *MapSeg) {
	// the exit line is the seam itself and is never drawn from inside the
	// portal
	if w.ctx.ClipLine != nil && seg.Line == w.ctx.ClipLine {
		w.stats.SegsCulled++
		return
	}
	if !w.ctx.SegVisible(seg) {
		w.stats.SegsCulled++
		return
	}
	x, y := w.ctx.View.X, w.ctx.View.Y
	angle1 := PointToAngle2(x, y, seg.V1.X, seg.V1.Y)
	angle2 := PointToAngle2(x, y, seg.V2.X, seg.V2.Y)
	// back side
	if angle1-angle2 >= ANG180 || angle1 == angle2 {
		return
	}
	if !w.clipper.SafeCheckRange(angle2, angle1) {
		return
	}
	exit := -1
	if w.ctx.AllowPortals && w.pairs != nil && seg.Side == 0 {
		exit = w.pairs.Exit(seg.LineIndex)
	}
	if exit >= 0 {
		w.stats.PortalSegs++
	} else {
		w.stats.SegsDrawn++
	}
	if w.visit(seg, exit, angle1, angle2) {
		w.clipper.SafeAddClipRange(angle2, angle1)
	}
}

// isSolid tells whether the seg blocks everything behind it
func isSolid(seg *MapSeg) bool {
	if seg.BackSector == nil || seg.FrontSector == nil {
		return true
	}
	// closed door and the like
	return seg.BackSector.CeilingHeight <= seg.FrontSector.FloorHeight ||
		seg.BackSector.FloorHeight >= seg.FrontSector.CeilingHeight ||
		seg.BackSector.CeilingHeight <= seg.BackSector.FloorHeight
}
