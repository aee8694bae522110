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

	"golang.org/x/image/bmp"
)

// Colors of pixels by the pass that drew them: nothing, player view, then
// portal depth 1, 2, ...
var passPalette = color.Palette{
	color.RGBA{0, 0, 0, 255},
	color.RGBA{128, 128, 128, 255},
	color.RGBA{220, 60, 60, 255},
	color.RGBA{60, 200, 60, 255},
	color.RGBA{70, 90, 230, 255},
	color.RGBA{230, 210, 50, 255},
	color.RGBA{200, 70, 220, 255},
	color.RGBA{60, 210, 220, 255},
}

// passImage makes a palettized image of a buffer holding 1 + pass for each
// pixel. Passes past the palette reuse its last colors
func passImage(buf []uint8, w, h int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, w, h), passPalette)
	last := uint8(len(passPalette) - 1)
	for i, v := range buf {
		if v > last {
			v = 2 + (v-2)%(last-1)
		}
		img.Pix[i] = v
	}
	return img
}

func stencilImage(gl *SimGL, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, s := range gl.Stencil {
		v := int(s) * 64
		if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v)
	}
	return img
}

// depthImage is brighter for nearer pixels, black where nothing was drawn
func depthImage(gl *SimGL, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	maxDepth := float32(0)
	for _, d := range gl.Depth {
		if d != farDepth && d > maxDepth {
			maxDepth = d
		}
	}
	if maxDepth == 0 {
		return img
	}
	for i, d := range gl.Depth {
		if d == farDepth {
			continue
		}
		img.Pix[i] = uint8(255 - 223*d/maxDepth)
	}
	return img
}

// BufferDumper writes the buffers of a frame as bmp files named
// <prefix>NNN_<buffer>.bmp
type BufferDumper struct {
	prefix string
	fc     *FileControl
	proj   Projection
}

func NewBufferDumper(prefix string, fc *FileControl, proj Projection) *BufferDumper {
	return &BufferDumper{
		prefix: prefix,
		fc:     fc,
		proj:   proj,
	}
}

// Dump is a FrameSink
func (d *BufferDumper) Dump(rep *FrameReport) error {
	w, h := d.proj.Width, d.proj.Height
	if rep.GL != nil {
		if err := d.write(rep.Index, "stencil", stencilImage(rep.GL, w, h)); err != nil {
			return err
		}
		if err := d.write(rep.Index, "depth", depthImage(rep.GL, w, h)); err != nil {
			return err
		}
		if err := d.write(rep.Index, "hwpass", passImage(rep.GL.PassBuf, w, h)); err != nil {
			return err
		}
	}
	if rep.SW != nil {
		if err := d.write(rep.Index, "swpass", passImage(rep.SW.Frame, w, h)); err != nil {
			return err
		}
	}
	return nil
}

func (d *BufferDumper) write(index int, what string, img image.Image) error {
	name := fmt.Sprintf("%s%03d_%s.bmp", d.prefix, index, what)
	f, err := d.fc.OutputFile(name)
	if err != nil {
		return fmt.Errorf("couldn't create %s: %w", name, err)
	}
	err = bmp.Encode(f, img)
	if errClose := f.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
