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
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// openTestInput writes the test wad into dir and opens it with fc
func openTestInput(t *testing.T, fc *FileControl, dir string) {
	name := filepath.Join(dir, "tworooms.wad")
	if err := os.WriteFile(name, twoRoomsWad(false), 0644); err != nil {
		t.Fatalf("writing wad: %s", err.Error())
	}
	if _, err := fc.OpenInputFile(name); err != nil {
		t.Fatalf("OpenInputFile: %s", err.Error())
	}
}

func dirEntries(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %s", err.Error())
	}
	var res []string
	for _, e := range entries {
		res = append(res, e.Name())
	}
	return res
}

func TestBufferDump(t *testing.T) {
	dir := t.TempDir()
	fc := &FileControl{}
	defer fc.Shutdown()
	openTestInput(t, fc, dir)

	setup := twoRoomsSetup(RENDERER_BOTH, true)
	d := NewBufferDumper(filepath.Join(dir, "f"), fc, setup.Proj)
	rep := RenderFrame(setup, 7, twoRoomsStart, CreateMiniLogger())
	if err := d.Dump(rep); err != nil {
		t.Fatalf("Dump: %s", err.Error())
	}
	names := []string{"f007_stencil.bmp", "f007_depth.bmp", "f007_hwpass.bmp", "f007_swpass.bmp"}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			t.Errorf("%s exists before success", name)
		}
	}
	if !fc.Success() {
		t.Fatalf("Success failed")
	}
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %s", name, err.Error())
			continue
		}
		img, err := bmp.Decode(f)
		f.Close()
		if err != nil {
			t.Errorf("%s: %s", name, err.Error())
			continue
		}
		if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 100 {
			t.Errorf("%s is %dx%d", name, b.Dx(), b.Dy())
		}
	}
	// only the wad and the dumps, no temporary files
	if got := dirEntries(t, dir); len(got) != len(names)+1 {
		t.Errorf("directory has %v", got)
	}
}

func TestAutomap(t *testing.T) {
	g := twoRooms()
	pairs := DetectPortalPairs(g)
	img := DrawAutomap(g, pairs, twoRoomsViews)
	b := img.Bounds()
	// wider than tall, larger side takes the whole size
	if b.Dx() < AUTOMAP_MAXSIZE-1 || b.Dx() > AUTOMAP_MAXSIZE+1 ||
		b.Dy() >= b.Dx() || b.Dy() <= 2*AUTOMAP_MARGIN {
		t.Errorf("automap is %dx%d", b.Dx(), b.Dy())
	}
	// margins stay background
	bg := img.At(1, 1)
	if img.At(b.Dx()-2, b.Dy()-2) != bg {
		t.Errorf("corners differ")
	}

	dir := t.TempDir()
	fc := &FileControl{}
	defer fc.Shutdown()
	openTestInput(t, fc, dir)
	name := filepath.Join(dir, "map.png")
	if err := SaveAutomap(fc, name, g, pairs, twoRoomsViews); err != nil {
		t.Fatalf("SaveAutomap: %s", err.Error())
	}
	if !fc.Success() {
		t.Fatalf("Success failed")
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("%s", err.Error())
	}
	defer f.Close()
	saved, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding automap: %s", err.Error())
	}
	if saved.Bounds().Dx() != b.Dx() || saved.Bounds().Dy() != b.Dy() {
		t.Errorf("saved automap is %v, drawn %v", saved.Bounds(), b)
	}
}

func TestFileControlShutdown(t *testing.T) {
	dir := t.TempDir()
	fc := &FileControl{}
	openTestInput(t, fc, dir)
	f, err := fc.OutputFile(filepath.Join(dir, "out.bmp"))
	if err != nil {
		t.Fatalf("OutputFile: %s", err.Error())
	}
	f.Write([]byte("partial"))
	f.Close()
	fc.Shutdown()
	if got := dirEntries(t, dir); len(got) != 1 || got[0] != "tworooms.wad" {
		t.Errorf("after shutdown directory has %v", got)
	}
}
