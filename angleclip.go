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
	"sort"
)

// AngleClipper keeps the angular ranges (as seen from the viewpoint) that are
// already occluded by solid walls. Ranges are closed intervals in angle
// space, kept sorted and disjoint. Ranges that wrap over angle 0 are split by
// the Safe* methods, the plain ones expect start <= end
type AngleClipper struct {
	ranges []clipRange
}

type clipRange struct {
	start Angle
	end   Angle
}

func (c *AngleClipper) Clear() {
	c.ranges = c.ranges[:0]
}

// IsRangeVisible returns false only if [start, end] is entirely occluded
func (c *AngleClipper) IsRangeVisible(start, end Angle) bool {
	// first range that ends at or after start
	i := sort.Search(len(c.ranges), func(i int) bool {
		return c.ranges[i].end >= start
	})
	if i == len(c.ranges) {
		return true
	}
	r := c.ranges[i]
	return !(r.start <= start && r.end >= end)
}

// AddClipRange occludes [start, end], merging with whatever it touches
func (c *AngleClipper) AddClipRange(start, end Angle) {
	i := sort.Search(len(c.ranges), func(i int) bool {
		return c.ranges[i].end == ANGLE_MAX || c.ranges[i].end+1 >= start
	})
	j := i
	for j < len(c.ranges) && (c.ranges[j].start <= end ||
		(end != ANGLE_MAX && c.ranges[j].start == end+1)) {
		if c.ranges[j].start < start {
			start = c.ranges[j].start
		}
		if c.ranges[j].end > end {
			end = c.ranges[j].end
		}
		j++
	}
	if i == j {
		c.ranges = append(c.ranges, clipRange{})
		copy(c.ranges[i+1:], c.ranges[i:])
		c.ranges[i] = clipRange{start: start, end: end}
		return
	}
	c.ranges[i] = clipRange{start: start, end: end}
	c.ranges = append(c.ranges[:i+1], c.ranges[j:]...)
}

// SafeAddClipRange occludes angles going counterclockwise from start to end,
// which wraps over 0 when start > end
func (c *AngleClipper) SafeAddClipRange(start, end Angle) {
	if start > end {
		c.AddClipRange(start, ANGLE_MAX)
		c.AddClipRange(0, end)
	} else {
		c.AddClipRange(start, end)
	}
}

func (c *AngleClipper) SafeCheckRange(start, end Angle) bool {
	if start > end {
		return c.IsRangeVisible(start, ANGLE_MAX) || c.IsRangeVisible(0, end)
	}
	return c.IsRangeVisible(start, end)
}

// Full tells whether there is nothing left to see. The walk can stop early
func (c *AngleClipper) Full() bool {
	return len(c.ranges) == 1 && c.ranges[0].start == 0 &&
		c.ranges[0].end == ANGLE_MAX
}

// ClipFieldOfView occludes everything outside half-angle halfFov around
// viewangle
func (c *AngleClipper) ClipFieldOfView(viewangle, halfFov Angle) {
	if halfFov >= ANG180 {
		return
	}
	c.SafeAddClipRange(viewangle+halfFov, viewangle-halfFov)
}
