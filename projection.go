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

// Projection maps the world onto screen columns and rows for a given screen
// size and horizontal field of view. Both reference walkers and the simulated
// rasterizer use it, so that they always agree on where a wall is
type Projection struct {
	Width   int
	Height  int
	Focal   float64 // distance from eye to the projection plane, in pixels
	CenterX float64
	CenterY float64
	HalfFov Angle
}

func NewProjection(width, height int, fov Angle) Projection {
	half := fov / 2
	if half >= ANG90 {
		Log.Panic("Field of view must be less than 180 degrees, got %.1f\n",
			fov.Degrees())
	}
	centerX := float64(width) / 2
	return Projection{
		Width:   width,
		Height:  height,
		Focal:   centerX / math.Tan(half.Radians()),
		CenterX: centerX,
		CenterY: float64(height) / 2,
		HalfFov: half,
	}
}

// ColumnEdgeAngle is the world angle of the ray through the left edge of
// column x (x may equal Width for the right edge of the screen)
func (p *Projection) ColumnEdgeAngle(view Viewpoint, x int) Angle {
	return view.Angle + RadiansToAngle(math.Atan((p.CenterX-float64(x))/p.Focal))
}

// ray returns the direction of the ray through the center of column x. Its
// component along the view direction is 1, so a hit at parameter t is at
// depth t
func (p *Projection) ray(view Viewpoint, x int) (float64, float64) {
	o := (p.CenterX - (float64(x) + 0.5)) / p.Focal
	s, c := math.Sincos(view.Angle.Radians())
	return c - o*s, s + o*c
}

// WallDepth intersects the ray of column x with the segment from a to b and
// returns the depth of the hit
func (p *Projection) WallDepth(view Viewpoint, a, b *MapVertex, x int) (float64, bool) {
	dx, dy := p.ray(view, x)
	ox, oy := view.X.Float(), view.Y.Float()
	ax, ay := a.X.Float(), a.Y.Float()
	ex, ey := b.X.Float()-ax, b.Y.Float()-ay
	den := dx*ey - dy*ex
	if den == 0 {
		return 0, false
	}
	wx, wy := ax-ox, ay-oy
	t := (wx*ey - wy*ex) / den
	s := (wx*dy - wy*dx) / den
	if t <= 0 || s < 0 || s > 1 {
		return 0, false
	}
	return t, true
}

// SegColumns returns the span [x1, x2) of columns whose rays hit the seg,
// limited to [lo, hi). A front facing seg always projects to one contiguous
// span
func (p *Projection) SegColumns(view Viewpoint, seg *MapSeg, lo, hi int) (int, int, bool) {
	x1, x2 := -1, -1
	for x := lo; x < hi; x++ {
		if _, ok := p.WallDepth(view, seg.V1, seg.V2, x); ok {
			if x1 < 0 {
				x1 = x
			}
			x2 = x + 1
		} else if x1 >= 0 {
			break
		}
	}
	return x1, x2, x1 >= 0
}

// Row is the screen row at which height h appears at depth
func (p *Projection) Row(view Viewpoint, h Fixed, depth float64) float64 {
	return p.CenterY - (h.Float()-view.Z.Float())*p.Focal/depth
}

// Scale is the software renderer's wall scale at the given depth, in fixed
// point
func (p *Projection) Scale(depth float64) Fixed {
	s := p.Focal / depth
	if s >= 32767 {
		return Fixed(math.MaxInt32)
	}
	return FloatToFixed(s)
}

// RowSpan clips the rows between heights top and bottom at depth to the
// screen, returning the first and one past the last row
func (p *Projection) RowSpan(view Viewpoint, top, bottom Fixed, depth float64) (int, int) {
	y1 := int(math.Ceil(p.Row(view, top, depth) - 0.5))
	y2 := int(math.Ceil(p.Row(view, bottom, depth) - 0.5))
	if y1 < 0 {
		y1 = 0
	}
	if y2 > p.Height {
		y2 = p.Height
	}
	return y1, y2
}
