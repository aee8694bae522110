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
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	AUTOMAP_MAXSIZE = 1024 // larger side of the image
	AUTOMAP_MARGIN  = 24
)

// automapTransform maps level coordinates into image ones, y going down
type automapTransform struct {
	box    BBox
	scale  float64
	width  int
	height int
}

func newAutomapTransform(box BBox) automapTransform {
	w := (box[BOXRIGHT] - box[BOXLEFT]).Float()
	h := (box[BOXTOP] - box[BOXBOTTOM]).Float()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	avail := float64(AUTOMAP_MAXSIZE - 2*AUTOMAP_MARGIN)
	scale := math.Min(avail/w, avail/h)
	return automapTransform{
		box:    box,
		scale:  scale,
		width:  int(math.Ceil(w*scale)) + 2*AUTOMAP_MARGIN,
		height: int(math.Ceil(h*scale)) + 2*AUTOMAP_MARGIN,
	}
}

func (t *automapTransform) point(x, y Fixed) (float64, float64) {
	return (x-t.box[BOXLEFT]).Float()*t.scale + AUTOMAP_MARGIN,
		(t.box[BOXTOP]-y).Float()*t.scale + AUTOMAP_MARGIN
}

// automapLabel is text to put next to something drawn on the automap
type automapLabel struct {
	x, y float64
	text string
	col  color.RGBA
}

// DrawAutomap draws the level with portal lines, the links between
// entrances and exits, and the viewpoints frames were rendered from
func DrawAutomap(geom *Geometry, pairs *PortalPairs, views []Viewpoint) image.Image {
	var box BBox
	ClearBox(&box)
	for i := range geom.Vertices {
		AddToBox(&box, geom.Vertices[i].X, geom.Vertices[i].Y)
	}
	for _, v := range views {
		AddToBox(&box, v.X, v.Y)
	}
	t := newAutomapTransform(box)
	dc := gg.NewContext(t.width, t.height)
	defer dc.Close()
	dc.ClearWithColor(gg.RGB(0.05, 0.05, 0.08))

	var labels []automapLabel
	dc.SetLineWidth(1)
	for i := range geom.Lines {
		line := &geom.Lines[i]
		if pairs.Exit(i) >= 0 {
			continue
		}
		if line.BackSector == nil {
			dc.SetRGB(0.85, 0.85, 0.85)
		} else {
			dc.SetRGB(0.4, 0.4, 0.45)
		}
		x1, y1 := t.point(line.V1.X, line.V1.Y)
		x2, y2 := t.point(line.V2.X, line.V2.Y)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	// links first, so that portal lines are drawn over them
	dc.SetLineWidth(1)
	dc.SetRGBA(0.9, 0.6, 0.1, 0.5)
	for _, entrance := range pairs.Entrances() {
		exit := pairs.Exit(entrance)
		if exit < entrance && pairs.Exit(exit) == entrance {
			// drawn from the other side already
			continue
		}
		cx1, cy1 := geom.Lines[entrance].Center()
		cx2, cy2 := geom.Lines[exit].Center()
		x1, y1 := t.point(cx1, cy1)
		x2, y2 := t.point(cx2, cy2)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	dc.SetLineWidth(3)
	for _, entrance := range pairs.Entrances() {
		line := &geom.Lines[entrance]
		dc.SetRGB(1, 0.55, 0)
		x1, y1 := t.point(line.V1.X, line.V1.Y)
		x2, y2 := t.point(line.V2.X, line.V2.Y)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		cx, cy := line.Center()
		lx, ly := t.point(cx, cy)
		labels = append(labels, automapLabel{
			x:    lx + 4,
			y:    ly - 4,
			text: fmt.Sprintf("%d>%d", entrance, pairs.Exit(entrance)),
			col:  color.RGBA{255, 170, 60, 255},
		})
	}

	dc.SetLineWidth(2)
	for i, v := range views {
		x, y := t.point(v.X, v.Y)
		dc.SetRGB(0.3, 1, 0.3)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
		a := v.Angle.Radians()
		dc.DrawLine(x, y, x+12*math.Cos(a), y-12*math.Sin(a))
		dc.Stroke()
		if len(views) <= 64 || i%8 == 0 {
			labels = append(labels, automapLabel{
				x:    x + 6,
				y:    y + 14,
				text: fmt.Sprintf("%d", i),
				col:  color.RGBA{120, 255, 120, 255},
			})
		}
	}

	// gg text needs a font file, the labels do with the built in face
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
	drawLabels(img, labels)
	return img
}

func drawLabels(img *image.RGBA, labels []automapLabel) {
	d := &font.Drawer{
		Dst:  img,
		Face: basicfont.Face7x13,
	}
	for _, l := range labels {
		d.Src = image.NewUniform(l.col)
		d.Dot = fixed.P(int(l.x), int(l.y))
		d.DrawString(l.text)
	}
}

// SaveAutomap draws the automap into a png file
func SaveAutomap(fc *FileControl, fileName string, geom *Geometry, pairs *PortalPairs,
	views []Viewpoint) error {
	img := DrawAutomap(geom, pairs, views)
	tmpName, err := fc.OutputPath(fileName)
	if err != nil {
		return fmt.Errorf("couldn't create automap file: %w", err)
	}
	out := gg.NewContextForImage(img)
	defer out.Close()
	return out.SavePNG(tmpName)
}
