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
	"fmt"
)

// ErrRecursionLimit is returned when discovering a portal would nest deeper
// than allowed. It is not fatal: the seg is treated as solid and nothing is
// rendered through it
var ErrRecursionLimit = errors.New("portal recursion limit reached")

// Stencil buffer is 8-bit, level 0 is the player view and every pass takes one
// level more
const MAX_PORTAL_PASS = 254

// Portal is one seam between an entrance seg and an exit line, discovered
// during one frame's walk. It never outlives the frame
type Portal struct {
	Seg       *MapSeg // entrance seg, drawn to mark and unmark the window
	StartLine int     // entrance line
	ClipLine  int     // exit line, -1 if the portal has no clip line
	View      Viewpoint
	Pass      int // recursion depth of the pass that renders through it

	// hardware renderer: angles for the left and right edges of the portal
	// relative to the viewpoint, rotated into the destination frame
	Angle1 Angle
	Angle2 Angle

	// software renderer: the clipping window snapshot for columns [Start, End)
	Start       int
	End         int
	CeilingClip []int16
	FloorClip   []int16
	FrontScale  []Fixed

	released bool
}

// PortalList keeps portals in discovery order. Portals are only ever appended,
// and released all at once
type PortalList struct {
	portals  []*Portal
	released int
}

func (l *PortalList) Len() int {
	return len(l.portals)
}

func (l *PortalList) Portals() []*Portal {
	return l.portals
}

// Released is the number of portals freed over the list's lifetime
func (l *PortalList) Released() int {
	return l.released
}

func (l *PortalList) append(p *Portal) {
	l.portals = append(l.portals, p)
}

// Release frees every portal exactly once and empties the list. The clip line
// cached in ctx (if any) is cleared too. Releasing an empty list does nothing
func (l *PortalList) Release(ctx *RenderContext) {
	if ctx != nil {
		ctx.ClipLine = nil
	}
	for i, p := range l.portals {
		p.release()
		l.released++
		l.portals[i] = nil
	}
	l.portals = l.portals[:0]
}

func (p *Portal) release() {
	if p.released {
		Log.Panic("Portal from line %d to line %d released twice\n",
			p.StartLine, p.ClipLine)
	}
	p.released = true
	p.CeilingClip = nil
	p.FloorClip = nil
	p.FrontScale = nil
	p.Seg = nil
}

// portalMaker holds what is needed to turn a pair of lines into a portal,
// shared by both renderers
type portalMaker struct {
	geom      *Geometry
	transform TransformFunc
	maxDepth  int
}

// newPortal validates the lines, checks recursion depth and computes the
// portal's viewpoint from the viewpoint active in ctx
func (m *portalMaker) newPortal(ctx *RenderContext, line1, line2 int) (*Portal, Angle, error) {
	start, err := m.geom.Line(line1)
	if err != nil {
		return nil, 0, fmt.Errorf("portal entrance: %w", err)
	}
	dest, err := m.geom.Line(line2)
	if err != nil {
		return nil, 0, fmt.Errorf("portal exit: %w", err)
	}
	if start.FrontSector == nil || dest.FrontSector == nil {
		return nil, 0, fmt.Errorf("portal lines %d, %d must both have a front sector: %w",
			line1, line2, ErrBadIndex)
	}
	pass := ctx.Depth + 1
	if pass > m.maxDepth || pass > MAX_PORTAL_PASS {
		return nil, 0, ErrRecursionLimit
	}
	view, dangle := m.transform(start, dest, ctx.View)
	return &Portal{
		StartLine: line1,
		ClipLine:  line2,
		View:      view,
		Pass:      pass,
	}, dangle, nil
}
