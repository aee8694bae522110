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

// Doom-style 16.16 fixed point numbers and binary angles. Level coordinates
// come out of the wad as int16, but everything a renderer computes (view
// position, transformed view through a portal) lives in fixed point.

type Fixed int32

// Angle is a binary angle measurement: the full turn is 2^32, so adding two
// angles wraps exactly the way it should
type Angle uint32

const FRACBITS = 16
const FRACUNIT = Fixed(1 << FRACBITS)

const (
	ANG45     = Angle(0x20000000)
	ANG90     = Angle(0x40000000)
	ANG180    = Angle(0x80000000)
	ANG270    = Angle(0xC0000000)
	ANGLE_MAX = Angle(0xFFFFFFFF)
)

const FINEANGLES = 8192
const FINEMASK = FINEANGLES - 1
const ANGLETOFINESHIFT = 19 // 0x100000000 to 0x2000

const SLOPEBITS = 11
const SLOPERANGE = 1 << SLOPEBITS
const DBITS = FRACBITS - SLOPEBITS

// finesine has 5/4 of a turn, so that finecosine can be a view into it
var finesine [5 * FINEANGLES / 4]Fixed
var finecosine []Fixed

// tantoangle maps slope (scaled to SLOPERANGE) to angle, for the first octant
var tantoangle [SLOPERANGE + 1]Angle

func init() {
	for i := range finesine {
		a := (float64(i) + 0.5) * 2 * math.Pi / FINEANGLES
		finesine[i] = Fixed(math.Round(math.Sin(a) * float64(FRACUNIT)))
	}
	finecosine = finesine[FINEANGLES/4:]
	for i := range tantoangle {
		tantoangle[i] = RadiansToAngle(math.Atan(float64(i) / SLOPERANGE))
	}
}

func IntToFixed(i int) Fixed {
	return Fixed(i << FRACBITS)
}

func FloatToFixed(f float64) Fixed {
	return Fixed(math.Round(f * float64(FRACUNIT)))
}

func (f Fixed) Float() float64 {
	return float64(f) / float64(FRACUNIT)
}

// Int truncates toward negative infinity, same as an arithmetic shift does
func (f Fixed) Int() int {
	return int(f >> FRACBITS)
}

func FixedMul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FRACBITS)
}

// FixedDiv saturates instead of overflowing, like the engine's version does
func FixedDiv(a, b Fixed) Fixed {
	if b == 0 || (abs32(int32(a))>>14) >= abs32(int32(b)) {
		if (a ^ b) < 0 {
			return Fixed(math.MinInt32)
		}
		return Fixed(math.MaxInt32)
	}
	return Fixed((int64(a) << FRACBITS) / int64(b))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func FineSine(a Angle) Fixed {
	return finesine[(a>>ANGLETOFINESHIFT)&FINEMASK]
}

func FineCosine(a Angle) Fixed {
	return finecosine[(a>>ANGLETOFINESHIFT)&FINEMASK]
}

// RadiansToAngle maps any real angle onto the binary circle
func RadiansToAngle(r float64) Angle {
	turns := r / (2 * math.Pi)
	turns -= math.Floor(turns)
	v := math.Round(turns * 4294967296.0)
	if v >= 4294967296.0 {
		v = 0
	}
	return Angle(uint32(v))
}

func (a Angle) Radians() float64 {
	return float64(a) * (2 * math.Pi / 4294967296.0)
}

// Degrees is for humans - log messages and command line
func (a Angle) Degrees() float64 {
	return float64(a) * (360.0 / 4294967296.0)
}

func DegreesToAngle(d float64) Angle {
	return RadiansToAngle(d * math.Pi / 180.0)
}

// PointToAngle2 returns the angle of the vector going from (x1, y1) to (x2,
// y2). The result for a zero-length vector is 0
func PointToAngle2(x1, y1, x2, y2 Fixed) Angle {
	dx := float64(x2) - float64(x1)
	dy := float64(y2) - float64(y1)
	if dx == 0 && dy == 0 {
		return 0
	}
	return RadiansToAngle(math.Atan2(dy, dx))
}

func PointToDist2(x1, y1, x2, y2 Fixed) Fixed {
	d := math.Hypot(float64(x2)-float64(x1), float64(y2)-float64(y1))
	if d >= math.MaxInt32 {
		return Fixed(math.MaxInt32)
	}
	return Fixed(d)
}

// SlopeDiv is num/den scaled to index tantoangle, den >= num
func SlopeDiv(num, den uint64) int {
	if den < 512 {
		return SLOPERANGE
	}
	ans := (num << 3) / (den >> 8)
	if ans > SLOPERANGE {
		return SLOPERANGE
	}
	return int(ans)
}

// PointToAngleClassic is PointToAngle2 done with the tantoangle table, octant
// by octant, the way R_PointToAngle does
func PointToAngleClassic(x1, y1, x2, y2 Fixed) Angle {
	x := int64(x2) - int64(x1)
	y := int64(y2) - int64(y1)
	if x == 0 && y == 0 {
		return 0
	}
	if x >= 0 {
		if y >= 0 {
			if x > y {
				return tantoangle[SlopeDiv(uint64(y), uint64(x))]
			}
			return ANG90 - 1 - tantoangle[SlopeDiv(uint64(x), uint64(y))]
		}
		y = -y
		if x > y {
			return -tantoangle[SlopeDiv(uint64(y), uint64(x))]
		}
		return ANG270 + tantoangle[SlopeDiv(uint64(x), uint64(y))]
	}
	x = -x
	if y >= 0 {
		if x > y {
			return ANG180 - 1 - tantoangle[SlopeDiv(uint64(y), uint64(x))]
		}
		return ANG90 + tantoangle[SlopeDiv(uint64(x), uint64(y))]
	}
	y = -y
	if x > y {
		return ANG180 + tantoangle[SlopeDiv(uint64(y), uint64(x))]
	}
	return ANG270 - 1 - tantoangle[SlopeDiv(uint64(x), uint64(y))]
}

// PointToDistClassic is R_PointToDist: the longer leg divided by the cosine
// of the angle, both looked up in tables
func PointToDistClassic(x1, y1, x2, y2 Fixed) Fixed {
	dx := int64(x2) - int64(x1)
	dy := int64(y2) - int64(y1)
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		dx, dy = dy, dx
	}
	if dx == 0 {
		return 0
	}
	// legs longer than a Fixed can hold are halved, and the result doubled back
	shift := 0
	for dx > math.MaxInt32 {
		dx >>= 1
		dy >>= 1
		shift++
	}
	angle := (tantoangle[FixedDiv(Fixed(dy), Fixed(dx))>>DBITS] + ANG90) >> ANGLETOFINESHIFT
	dist := int64(FixedDiv(Fixed(dx), finesine[angle])) << shift
	if dist > math.MaxInt32 {
		return Fixed(math.MaxInt32)
	}
	return Fixed(dist)
}
