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

// Viewpoint is where the renderer stands and where it looks
type Viewpoint struct {
	X     Fixed
	Y     Fixed
	Z     Fixed
	Angle Angle
}

// TransformFunc computes the viewpoint to use when rendering through a portal
// whose entrance is line start and exit is line dest. Also returns the angle
// delta between the lines, which the hardware renderer needs for its window
type TransformFunc func(start, dest *MapLine, view Viewpoint) (Viewpoint, Angle)

// PortalAngleDelta is how much the view turns when passing from start to dest
func PortalAngleDelta(start, dest *MapLine) Angle {
	return PointToAngle2(0, 0, dest.Dx, dest.Dy) -
		PointToAngle2(0, 0, start.Dx, start.Dy)
}

// TransformViewpointPrecise offsets the view by the linedef centers using
// floating point trigonometry. The fixed point tables produce visible seams at
// portal edges, this doesn't. When the lines are parallel, the view is simply
// translated so that nothing is lost to rounding
func TransformViewpointPrecise(start, dest *MapLine, view Viewpoint) (Viewpoint, Angle) {
	dangle := PortalAngleDelta(start, dest)

	// looking glass center
	startX, startY := start.Center()
	// other side center
	destX, destY := dest.Center()

	var res Viewpoint
	if dangle == 0 {
		res.X = view.X + (destX - startX)
		res.Y = view.Y + (destY - startY)
	} else {
		dx := float64(view.X) - float64(startX)
		dy := float64(view.Y) - float64(startY)
		dist := math.Hypot(dx, dy)
		ang := math.Atan2(dy, dx) + dangle.Radians()
		res.X = destX + Fixed(math.Round(math.Cos(ang)*dist))
		res.Y = destY + Fixed(math.Round(math.Sin(ang)*dist))
	}
	res.Z = view.Z + dest.FrontSector.FloorHeight - start.FrontSector.FloorHeight
	res.Angle = view.Angle + dangle
	return res, dangle
}

// TransformViewpointClassic does the same with fixed point and the engine's
// tables: tantoangle for the angle and distance to the view, fine sine and
// cosine to put it back together. Kept for comparing against how the engine
// used to do it (-tc)
func TransformViewpointClassic(start, dest *MapLine, view Viewpoint) (Viewpoint, Angle) {
	dangle := PortalAngleDelta(start, dest)

	startX, startY := start.Center()
	destX, destY := dest.Center()

	distToPoint := PointToDistClassic(startX, startY, view.X, view.Y)
	angToPoint := PointToAngleClassic(startX, startY, view.X, view.Y)
	angToPoint += dangle

	var res Viewpoint
	res.X = destX + FixedMul(FineCosine(angToPoint), distToPoint)
	res.Y = destY + FixedMul(FineSine(angToPoint), distToPoint)
	res.Z = view.Z + dest.FrontSector.FloorHeight - start.FrontSector.FloorHeight
	res.Angle = view.Angle + dangle
	return res, dangle
}

func TransformFuncFromOption(classic bool) TransformFunc {
	if classic {
		return TransformViewpointClassic
	}
	return TransformViewpointPrecise
}
