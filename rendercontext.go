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

// RenderContext is everything that changes when the renderer steps through a
// portal: where the view is, which line clips it, how deep the recursion is.
// It is passed by value into every recursive pass, so returning from a pass
// restores the parent's state without anyone having to remember to do it
type RenderContext struct {
	View       Viewpoint
	ViewSector *MapSector
	ClipLine   *MapLine // exit line of the portal being rendered, nil if none
	Root       *Portal  // portal whose frame this is, nil for the player view
	Depth      int      // 0 for the player view, Portal.Pass inside a portal

	// hardware renderer
	StencilLevel   int
	AllowPortals   bool
	Mode           PortalState
	DrawingStencil bool // only the portal seg may draw while this is set

	// software renderer: columns the pass may draw into
	ClipStart int
	ClipEnd   int
}

// PlayerFrame sets up the context for the true player viewpoint, like
// R_SetupFrame does in the engine
func PlayerFrame(g *Geometry, view Viewpoint, screenWidth int) RenderContext {
	return RenderContext{
		View:         view,
		ViewSector:   g.PointInSector(view.X, view.Y),
		AllowPortals: true,
		ClipStart:    0,
		ClipEnd:      screenWidth,
	}
}

// PortalFrame returns the context for rendering from the portal's viewpoint.
// The receiver is not modified
func (ctx RenderContext) PortalFrame(g *Geometry, portal *Portal) RenderContext {
	ctx.View = portal.View
	ctx.Root = portal
	ctx.Depth = portal.Pass
	ctx.ClipLine = nil
	if portal.ClipLine != -1 {
		line, err := g.Line(portal.ClipLine)
		if err != nil {
			// was validated when the portal was created
			Log.Panic("PortalFrame: %s\n", err.Error())
		}
		ctx.ClipLine = line
		ctx.ViewSector = line.FrontSector
	} else {
		ctx.ViewSector = g.PointInSector(ctx.View.X, ctx.View.Y)
	}
	if portal.End > portal.Start {
		ctx.ClipStart = portal.Start
		ctx.ClipEnd = portal.End
	}
	return ctx
}
