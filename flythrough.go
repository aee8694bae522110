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

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inoutquad":  ease.InOutQuad,
	"inoutsine":  ease.InOutSine,
	"inoutcubic": ease.InOutCubic,
	"outcubic":   ease.OutCubic,
}

// Flythrough produces frames viewpoints moving along the path through its
// points, one tween step per frame. Position is interpolated linearly
// between neighbouring points, angle turns the shorter way round
func Flythrough(path []Viewpoint, frames int, easeFn ease.TweenFunc) []Viewpoint {
	if len(path) == 0 || frames <= 0 {
		return nil
	}
	if len(path) == 1 || frames == 1 {
		return []Viewpoint{path[0]}
	}
	last := len(path) - 1
	tween := gween.New(0, float32(last), float32(frames-1), easeFn)
	res := make([]Viewpoint, 0, frames)
	res = append(res, path[0])
	for k := 1; k < frames; k++ {
		v, done := tween.Update(1)
		if done || k == frames-1 {
			res = append(res, path[last])
			continue
		}
		res = append(res, pathPoint(path, float64(v)))
	}
	return res
}

// pathPoint is the viewpoint at parameter v, where integer v are path points
func pathPoint(path []Viewpoint, v float64) Viewpoint {
	if v <= 0 {
		return path[0]
	}
	i := int(math.Floor(v))
	if i >= len(path)-1 {
		return path[len(path)-1]
	}
	frac := v - float64(i)
	a, b := path[i], path[i+1]
	lerp := func(p, q Fixed) Fixed {
		return Fixed(math.Round(float64(p) + (float64(q)-float64(p))*frac))
	}
	// signed difference is the short way round
	turn := int32(b.Angle - a.Angle)
	return Viewpoint{
		X:     lerp(a.X, b.X),
		Y:     lerp(a.Y, b.Y),
		Z:     lerp(a.Z, b.Z),
		Angle: a.Angle + Angle(int32(math.Round(float64(turn)*frac))),
	}
}
