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

// PORTAL_ACTION is a writeable "constant" denoting linedef action number for
// visual portal, set from command line (--portal-action)
var PORTAL_ACTION = uint16(40)

// PortalPairs maps portal entrance lines to their exit lines. Every portal
// is two-way: looking into either line shows what is in front of the other
type PortalPairs struct {
	exits map[int]int
}

// Exit returns the exit line for the entrance line, or -1 if the line is
// not a portal
func (p *PortalPairs) Exit(line int) int {
	if p == nil {
		return -1
	}
	if exit, ok := p.exits[line]; ok {
		return exit
	}
	return -1
}

func (p *PortalPairs) Len() int {
	if p == nil {
		return 0
	}
	return len(p.exits)
}

// Entrances lists entrance lines in ascending order
func (p *PortalPairs) Entrances() []int {
	if p == nil {
		return nil
	}
	res := make([]int, 0, len(p.exits))
	for line := range p.exits {
		res = append(res, line)
	}
	sort.Ints(res)
	return res
}

func (p *PortalPairs) add(from, to int) {
	if p.exits == nil {
		p.exits = make(map[int]int)
	}
	p.exits[from] = to
}

// DetectPortalPairs finds lines with the portal action and pairs those sharing
// a tag. Incomplete definitions are reported and ignored. Returns nil if the
// level has no usable portals
func DetectPortalPairs(geom *Geometry) *PortalPairs {
	byTag := make(map[uint16][]int)
	for i := range geom.Lines {
		line := &geom.Lines[i]
		if line.Action != PORTAL_ACTION {
			continue
		}
		if line.Tag == 0 {
			Log.Printf("Ignoring portal linedef %d because it has zero tag\n", i)
			continue
		}
		if line.FrontSector == nil {
			Log.Printf("Ignoring portal linedef %d because it has no front sector\n", i)
			continue
		}
		byTag[line.Tag] = append(byTag[line.Tag], i)
	}
	if len(byTag) == 0 { // no portals
		return nil
	}
	tags := make([]int, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, int(tag))
	}
	sort.Ints(tags)

	pairs := &PortalPairs{}
	for _, tag := range tags {
		lines := byTag[uint16(tag)]
		switch {
		case len(lines) == 1:
			Log.Printf("Portal linedef %d is missing its other end: no other linedef with action %d and tag %d\n",
				lines[0], PORTAL_ACTION, tag)
		case len(lines) == 2:
			pairs.add(lines[0], lines[1])
			pairs.add(lines[1], lines[0])
		default:
			// Engine looks up the first line with the tag, do the same
			Log.Printf("Tag %d is shared by %d portal linedefs, all of them will lead to linedef %d\n",
				tag, len(lines), lines[0])
			pairs.add(lines[0], lines[1])
			for _, l := range lines[1:] {
				pairs.add(l, lines[0])
			}
		}
	}
	if pairs.Len() == 0 {
		Log.Printf("None of discovered portal definitions were complete.\n")
		return nil
	}
	return pairs
}
