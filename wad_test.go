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
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

type testWad struct {
	data  bytes.Buffer
	lumps []LumpEntry
}

func (w *testWad) add(name string, records interface{}) {
	entry := LumpEntry{FilePos: uint32(12 + w.data.Len())}
	copy(entry.Name[:], name)
	if records != nil {
		if err := binary.Write(&w.data, binary.LittleEndian, records); err != nil {
			panic(err)
		}
	}
	entry.Size = uint32(12+w.data.Len()) - entry.FilePos
	w.lumps = append(w.lumps, entry)
}

func (w *testWad) bytes(magic uint32) []byte {
	var res bytes.Buffer
	hdr := WadHeader{
		MagicSig:       magic,
		LumpCount:      uint32(len(w.lumps)),
		DirectoryStart: uint32(12 + w.data.Len()),
	}
	binary.Write(&res, binary.LittleEndian, hdr)
	res.Write(w.data.Bytes())
	binary.Write(&res, binary.LittleEndian, w.lumps)
	return res.Bytes()
}

// subsector bits of node children, as variables so that conversion to the
// signed record fields happens at run time
var vanillaSubsector uint16 = 0x8000
var deepSubsector uint32 = 0x80000000

// twoRoomsWad encodes twoRooms() as MAP01, followed by an incomplete MAP02
func twoRoomsWad(deep bool) []byte {
	w := &testWad{}
	w.add("MAP01", nil)
	w.add("THINGS", []Thing{
		{XPos: 1100, YPos: 100, Angle: 0, Type: 3004}, // some monster
		{XPos: 160, YPos: 128, Angle: 90, Type: THING_PLAYER1},
	})
	lines := make([]Linedef, len(twoRoomsLines))
	for i, tl := range twoRoomsLines {
		lines[i] = Linedef{
			StartVertex: uint16(tl.v1),
			EndVertex:   uint16(tl.v2),
			Flags:       LF_IMPASSABLE,
			Action:      tl.action,
			Tag:         tl.tag,
			FrontSdef:   uint16(tl.sector),
			BackSdef:    SIDEDEF_NONE,
		}
	}
	w.add("LINEDEFS", lines)
	w.add("SIDEDEFS", []Sidedef{{Sector: 0}, {Sector: 1}})
	verts := make([]Vertex, len(twoRoomsVertices))
	for i, v := range twoRoomsVertices {
		verts[i] = Vertex{XPos: int16(v[0]), YPos: int16(v[1])}
	}
	w.add("VERTEXES", verts)
	rbox := [4]int16{BB_TOP: 512, BB_BOTTOM: 0, BB_LEFT: 1024, BB_RIGHT: 1280}
	lbox := [4]int16{BB_TOP: 512, BB_BOTTOM: 0, BB_LEFT: 0, BB_RIGHT: 256}
	if deep {
		segs := make([]DeepSeg, len(twoRoomsLines))
		for i, tl := range twoRoomsLines {
			segs[i] = DeepSeg{StartVertex: uint32(tl.v1), EndVertex: uint32(tl.v2),
				Linedef: uint16(i)}
		}
		w.add("SEGS", segs)
		w.add("SSECTORS", []DeepSubSector{{SegCount: 4, FirstSeg: 0}, {SegCount: 5, FirstSeg: 4}})
		var nodes bytes.Buffer
		nodes.Write(DEEPNODES_SIG[:])
		binary.Write(&nodes, binary.LittleEndian, []DeepNode{{
			X: 640, Y: 0, Dx: 0, Dy: 512, Rbox: rbox, Lbox: lbox,
			RChild: int32(deepSubsector | 1),
			LChild: int32(deepSubsector),
		}})
		w.add("NODES", nodes.Bytes())
	} else {
		segs := make([]Seg, len(twoRoomsLines))
		for i, tl := range twoRoomsLines {
			segs[i] = Seg{StartVertex: uint16(tl.v1), EndVertex: uint16(tl.v2),
				Linedef: uint16(i)}
		}
		w.add("SEGS", segs)
		w.add("SSECTORS", []SubSector{{SegCount: 4, FirstSeg: 0}, {SegCount: 5, FirstSeg: 4}})
		w.add("NODES", []Node{{
			X: 640, Y: 0, Dx: 0, Dy: 512, Rbox: rbox, Lbox: lbox,
			RChild: int16(vanillaSubsector | 1),
			LChild: int16(vanillaSubsector),
		}})
	}
	w.add("SECTORS", []Sector{{CeilHeight: 128}, {CeilHeight: 128}})
	w.add("REJECT", []byte{0})
	w.add("BLOCKMAP", nil)
	w.add("MAP02", nil)
	w.add("THINGS", []Thing{{XPos: 0, YPos: 0, Type: THING_PLAYER1}})
	w.add("ENDOOM", []byte("bye"))
	return w.bytes(PWAD_MAGIC_SIG)
}

func loadTwoRoomsWad(t *testing.T, deep bool) *Level {
	wad := twoRoomsWad(deep)
	r := bytes.NewReader(wad)
	dir, err := ReadWadDirectory(r)
	if err != nil {
		t.Fatalf("ReadWadDirectory: %s", err.Error())
	}
	lumps, err := dir.FindLevel("")
	if err != nil {
		t.Fatalf("FindLevel: %s", err.Error())
	}
	lvl, err := LoadLevel(r, dir, lumps)
	if err != nil {
		t.Fatalf("LoadLevel: %s", err.Error())
	}
	return lvl
}

func TestLoadLevel(t *testing.T) {
	for _, deep := range []bool{false, true} {
		lvl := loadTwoRoomsWad(t, deep)
		if lvl.DeepNodes != deep {
			t.Errorf("deep=%v: DeepNodes = %v", deep, lvl.DeepNodes)
		}
		want := twoRooms()
		g := lvl.Geom
		if lvl.Name != "MAP01" || len(g.Vertices) != len(want.Vertices) ||
			len(g.Lines) != len(want.Lines) || len(g.Segs) != len(want.Segs) ||
			len(g.Subsectors) != 2 || len(g.Nodes) != 1 || len(g.Sectors) != 2 {
			t.Fatalf("deep=%v: level %s loaded with wrong counts", deep, lvl.Name)
		}
		if g.Nodes[0] != want.Nodes[0] {
			t.Errorf("deep=%v: node %+v, want %+v", deep, g.Nodes[0], want.Nodes[0])
		}
		for i := range g.Lines {
			got, exp := &g.Lines[i], &want.Lines[i]
			if *got.V1 != *exp.V1 || *got.V2 != *exp.V2 || got.Action != exp.Action ||
				got.Tag != exp.Tag || got.FrontSector.Index() != exp.FrontSector.Index() ||
				got.BackSector != nil {
				t.Errorf("deep=%v: line %d differs", deep, i)
			}
		}
		for i := range g.Segs {
			if g.Segs[i].Line != &g.Lines[i] || g.Segs[i].Side != 0 {
				t.Errorf("deep=%v: seg %d not on its line", deep, i)
			}
		}
		if g.Sectors[1].CeilingHeight != IntToFixed(128) {
			t.Errorf("deep=%v: ceiling height %v", deep, g.Sectors[1].CeilingHeight.Float())
		}
		if len(lvl.Starts) != 1 || lvl.Starts[0] != twoRoomsStart {
			t.Errorf("deep=%v: starts %+v", deep, lvl.Starts)
		}
		if g.PointInSector(IntToFixed(1100), IntToFixed(100)) != &g.Sectors[1] {
			t.Errorf("deep=%v: point in room B is not in sector 1", deep)
		}
		pairs := DetectPortalPairs(g)
		if pairs.Exit(1) != 5 || pairs.Exit(6) != 3 {
			t.Errorf("deep=%v: portals %v", deep, pairs.Entrances())
		}
	}
}

func TestWadDirectory(t *testing.T) {
	wad := twoRoomsWad(false)
	dir, err := ReadWadDirectory(bytes.NewReader(wad))
	if err != nil {
		t.Fatalf("ReadWadDirectory: %s", err.Error())
	}
	if dir.IWAD {
		t.Errorf("PWAD read as IWAD")
	}
	levels := dir.Levels()
	if len(levels) != 2 || levels[0].Name != "MAP01" || levels[1].Name != "MAP02" {
		t.Fatalf("levels %v", levels)
	}
	if levels[0].Lump("ENDOOM") != -1 || levels[1].Lump("ENDOOM") != -1 {
		t.Errorf("non-level lump counted as part of a level")
	}
	if m := levels[0].Missing(); len(m) != 0 {
		t.Errorf("MAP01 missing %v", m)
	}
	if m := levels[1].Missing(); len(m) != len(LUMP_MUSTEXIST)-1 || m[0] != "LINEDEFS" {
		t.Errorf("MAP02 missing %v", m)
	}
	lvl, err := dir.FindLevel("map02")
	if err != nil || lvl.Name != "MAP02" || lvl.DirIndex != levels[1].DirIndex {
		t.Errorf("FindLevel(map02): %v %v", lvl, err)
	}
	if _, err := LoadLevel(bytes.NewReader(wad), dir, lvl); !errors.Is(err, ErrNoLevel) {
		t.Errorf("loading incomplete level: %v", err)
	}
	if _, err := dir.FindLevel("E1M1"); !errors.Is(err, ErrNoLevel) {
		t.Errorf("FindLevel(E1M1): %v", err)
	}
	buf, err := dir.ReadLump(bytes.NewReader(wad), len(dir.Lumps)-1)
	if err != nil || string(buf) != "bye" {
		t.Errorf("ReadLump: %q %v", buf, err)
	}
}

func TestNotAWad(t *testing.T) {
	w := &testWad{}
	w.add("MAP01", nil)
	if _, err := ReadWadDirectory(bytes.NewReader(w.bytes(0x12345678))); !errors.Is(err, ErrNotAWad) {
		t.Errorf("bad signature: %v", err)
	}
	if _, err := ReadWadDirectory(bytes.NewReader([]byte("PWA"))); err == nil {
		t.Errorf("truncated header accepted")
	}
	dir, err := ReadWadDirectory(bytes.NewReader(w.bytes(IWAD_MAGIC_SIG)))
	if err != nil || !dir.IWAD {
		t.Errorf("IWAD: %v", err)
	}
}

func TestZdoomNodesRejected(t *testing.T) {
	wad := twoRoomsWad(false)
	dir, _ := ReadWadDirectory(bytes.NewReader(wad))
	lumps, _ := dir.FindLevel("MAP01")
	// overwrite start of NODES with an extended nodes signature
	nodes := dir.Lumps[lumps.Lump("NODES")]
	copy(wad[nodes.FilePos:], ZNODES_PLAIN_SIG[:])
	_, err := LoadLevel(bytes.NewReader(wad), dir, lumps)
	if !errors.Is(err, ErrUnsupportedNodes) {
		t.Errorf("extended nodes: %v", err)
	}
}

func TestMissingFrontSideRejected(t *testing.T) {
	// two-sided linedef 0 with only a back sidedef
	wad := twoRoomsWad(false)
	dir, _ := ReadWadDirectory(bytes.NewReader(wad))
	lumps, _ := dir.FindLevel("MAP01")
	ld := wad[dir.Lumps[lumps.Lump("LINEDEFS")].FilePos:]
	binary.LittleEndian.PutUint16(ld[4:], LF_TWOSIDED)
	binary.LittleEndian.PutUint16(ld[10:], SIDEDEF_NONE)
	binary.LittleEndian.PutUint16(ld[12:], 0)
	_, err := LoadLevel(bytes.NewReader(wad), dir, lumps)
	if !errors.Is(err, ErrBadIndex) {
		t.Errorf("linedef without front sidedef: %v", err)
	}

	// seg 0 flipped onto the back of one-sided linedef 0
	wad = twoRoomsWad(false)
	sg := wad[dir.Lumps[lumps.Lump("SEGS")].FilePos:]
	binary.LittleEndian.PutUint16(sg[8:], 1)
	_, err = LoadLevel(bytes.NewReader(wad), dir, lumps)
	if !errors.Is(err, ErrBadIndex) {
		t.Errorf("flipped seg on one-sided linedef: %v", err)
	}

	// geometry built by hand still never panics the walker
	sec := &MapSector{CeilingHeight: IntToFixed(128)}
	if !isSolid(&MapSeg{BackSector: sec}) {
		t.Errorf("seg without front sector is not solid")
	}
}

func TestBuildViewpoints(t *testing.T) {
	saved := *config
	defer func() { *config = saved }()

	lvl := loadTwoRoomsWad(t, false)
	views, err := BuildViewpoints(lvl)
	if err != nil || len(views) != 1 || views[0] != twoRoomsStart {
		t.Errorf("default viewpoints %v %v", views, err)
	}

	config.Viewpoints = []ViewpointOption{{1100, 100, 180}}
	config.Path = []ViewpointOption{{100, 100, 0}, {200, 100, 90}}
	config.PathFrames = 4
	views, err = BuildViewpoints(lvl)
	if err != nil || len(views) != 5 {
		t.Fatalf("viewpoints %v %v", views, err)
	}
	if views[0].X != IntToFixed(1100) || views[0].Angle != ANG180 || views[0].Z != VIEWHEIGHT {
		t.Errorf("-p viewpoint %+v", views[0])
	}
	if views[4].X != IntToFixed(200) || views[4].Angle != ANG90 {
		t.Errorf("path end %+v", views[4])
	}

	config.Viewpoints = nil
	config.Path = nil
	lvl.Starts = nil
	if _, err := BuildViewpoints(lvl); err == nil {
		t.Errorf("level without starts and viewpoints accepted")
	}
}
