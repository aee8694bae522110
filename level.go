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
	"fmt"
	"io"
)

var ErrUnsupportedNodes = errors.New("unsupported nodes format")

// VIEWHEIGHT is the height of player's eyes above the floor
const VIEWHEIGHT = Fixed(41 << FRACBITS)

type LevelBounds struct {
	Xmin int16
	Ymin int16
	Xmax int16
	Ymax int16
}

// Level is what was loaded from the wad for one map
type Level struct {
	Name        string
	Geom        *Geometry
	Starts      []Viewpoint // player 1 starts, usually just one
	DeepNodes   bool
	LevelFormat int
}

// LoadLevel reads lumps of the level and builds the geometry from them. The
// nodes must already be built, vanilla or DeePBSP format
func LoadLevel(f io.ReaderAt, dir *WadDirectory, lvl *LevelLumps) (*Level, error) {
	if missing := lvl.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("level %s is missing lumps %v: %w", lvl.Name,
			missing, ErrNoLevel)
	}
	res := &Level{
		Name:        lvl.Name,
		LevelFormat: lvl.LevelFormat,
	}
	var linedefs []Linedef
	var hexenLinedefs []HexenLinedef
	var things []Thing
	var hexenThings []HexenThing
	var sidedefs []Sidedef
	var vertices []Vertex
	var sectors []Sector

	if err := readLumpInto(f, dir, lvl, "VERTEXES", &vertices, 4); err != nil {
		return nil, err
	}
	if err := readLumpInto(f, dir, lvl, "SECTORS", &sectors, DOOM_SECTOR_SIZE); err != nil {
		return nil, err
	}
	if err := readLumpInto(f, dir, lvl, "SIDEDEFS", &sidedefs, DOOM_SIDEDEF_SIZE); err != nil {
		return nil, err
	}
	if lvl.LevelFormat == FORMAT_HEXEN {
		Log.Printf("Level is in Hexen format.\n")
		if err := readLumpInto(f, dir, lvl, "LINEDEFS", &hexenLinedefs, HEXEN_LINEDEF_SIZE); err != nil {
			return nil, err
		}
		if err := readLumpInto(f, dir, lvl, "THINGS", &hexenThings, 20); err != nil {
			return nil, err
		}
		linedefs = make([]Linedef, len(hexenLinedefs))
		for i, hl := range hexenLinedefs {
			linedefs[i] = Linedef{
				StartVertex: hl.StartVertex,
				EndVertex:   hl.EndVertex,
				Flags:       hl.Flags,
				Action:      uint16(hl.Action),
				Tag:         uint16(hl.Arg1),
				FrontSdef:   hl.FrontSdef,
				BackSdef:    hl.BackSdef,
			}
		}
		things = make([]Thing, len(hexenThings))
		for i, ht := range hexenThings {
			things[i] = Thing{
				XPos:  ht.XPos,
				YPos:  ht.YPos,
				Angle: ht.Angle,
				Type:  ht.Type,
				Flags: ht.Flags,
			}
		}
	} else {
		if err := readLumpInto(f, dir, lvl, "LINEDEFS", &linedefs, DOOM_LINEDEF_SIZE); err != nil {
			return nil, err
		}
		if err := readLumpInto(f, dir, lvl, "THINGS", &things, 10); err != nil {
			return nil, err
		}
	}

	geom := &Geometry{
		Vertices: make([]MapVertex, len(vertices)),
		Sectors:  make([]MapSector, len(sectors)),
		Lines:    make([]MapLine, len(linedefs)),
		Bounds:   GetBounds(vertices),
	}
	for i, v := range vertices {
		geom.Vertices[i] = MapVertex{
			X: IntToFixed(int(v.XPos)),
			Y: IntToFixed(int(v.YPos)),
		}
	}
	for i, s := range sectors {
		geom.Sectors[i] = MapSector{
			FloorHeight:   IntToFixed(int(s.FloorHeight)),
			CeilingHeight: IntToFixed(int(s.CeilHeight)),
			Tag:           s.Tag,
			idx:           i,
		}
	}
	sideSector := func(sdef uint16) (*MapSector, error) {
		if sdef == SIDEDEF_NONE {
			return nil, nil
		}
		if int(sdef) >= len(sidedefs) {
			return nil, fmt.Errorf("sidedef %d: %w", sdef, ErrBadIndex)
		}
		sec := int(sidedefs[sdef].Sector)
		if sec >= len(geom.Sectors) {
			return nil, fmt.Errorf("sector %d of sidedef %d: %w", sec, sdef, ErrBadIndex)
		}
		return &geom.Sectors[sec], nil
	}
	for i, ld := range linedefs {
		if int(ld.StartVertex) >= len(vertices) || int(ld.EndVertex) >= len(vertices) {
			return nil, fmt.Errorf("linedef %d references vertex out of range: %w",
				i, ErrBadIndex)
		}
		line := &geom.Lines[i]
		line.idx = i
		line.V1 = &geom.Vertices[ld.StartVertex]
		line.V2 = &geom.Vertices[ld.EndVertex]
		line.Dx = line.V2.X - line.V1.X
		line.Dy = line.V2.Y - line.V1.Y
		line.Flags = ld.Flags
		line.Action = ld.Action
		line.Tag = ld.Tag
		var err error
		line.FrontSector, err = sideSector(ld.FrontSdef)
		if err != nil {
			return nil, fmt.Errorf("linedef %d front side: %w", i, err)
		}
		if line.FrontSector == nil {
			return nil, fmt.Errorf("linedef %d has no front sidedef: %w", i, ErrBadIndex)
		}
		if ld.Flags&LF_TWOSIDED != 0 {
			line.BackSector, err = sideSector(ld.BackSdef)
			if err != nil {
				return nil, fmt.Errorf("linedef %d back side: %w", i, err)
			}
		}
	}

	deep, err := loadNodes(f, dir, lvl, geom)
	if err != nil {
		return nil, err
	}
	res.DeepNodes = deep
	res.Geom = geom

	for _, th := range things {
		if th.Type != THING_PLAYER1 {
			continue
		}
		view := Viewpoint{
			X:     IntToFixed(int(th.XPos)),
			Y:     IntToFixed(int(th.YPos)),
			Angle: DegreesToAngle(float64(th.Angle)),
		}
		if sec := geom.PointInSector(view.X, view.Y); sec != nil {
			view.Z = sec.FloorHeight + VIEWHEIGHT
		}
		res.Starts = append(res.Starts, view)
	}
	return res, nil
}

// readLumpInto decodes the whole lump as an array of fixed size records
func readLumpInto(f io.ReaderAt, dir *WadDirectory, lvl *LevelLumps, name string,
	data interface{}, recSize int) error {
	idx := lvl.Lump(name)
	if idx < 0 {
		return fmt.Errorf("level %s: no %s lump: %w", lvl.Name, name, ErrNoLevel)
	}
	buf, err := dir.ReadLump(f, idx)
	if err != nil {
		return err
	}
	return decodeRecords(buf, data, recSize)
}

// decodeRecords allocates the slice data points to and fills it. Trailing
// bytes that don't make up a whole record are ignored, like the engine does
func decodeRecords(buf []byte, data interface{}, recSize int) error {
	cnt := len(buf) / recSize
	switch v := data.(type) {
	case *[]Vertex:
		*v = make([]Vertex, cnt)
	case *[]Sector:
		*v = make([]Sector, cnt)
	case *[]Sidedef:
		*v = make([]Sidedef, cnt)
	case *[]Linedef:
		*v = make([]Linedef, cnt)
	case *[]HexenLinedef:
		*v = make([]HexenLinedef, cnt)
	case *[]Thing:
		*v = make([]Thing, cnt)
	case *[]HexenThing:
		*v = make([]HexenThing, cnt)
	case *[]Seg:
		*v = make([]Seg, cnt)
	case *[]DeepSeg:
		*v = make([]DeepSeg, cnt)
	case *[]SubSector:
		*v = make([]SubSector, cnt)
	case *[]DeepSubSector:
		*v = make([]DeepSubSector, cnt)
	case *[]Node:
		*v = make([]Node, cnt)
	case *[]DeepNode:
		*v = make([]DeepNode, cnt)
	default:
		Log.Panic("decodeRecords: unexpected type %T\n", data)
	}
	r := bytes.NewReader(buf[:cnt*recSize])
	return binary.Read(r, binary.LittleEndian, data)
}

// loadNodes reads SEGS, SSECTORS and NODES. Returns whether they were in
// DeePBSP format
func loadNodes(f io.ReaderAt, dir *WadDirectory, lvl *LevelLumps, geom *Geometry) (bool, error) {
	nodesBuf, err := dir.ReadLump(f, lvl.Lump("NODES"))
	if err != nil {
		return false, err
	}
	deep := len(nodesBuf) >= 8 && bytes.Equal(nodesBuf[:8], DEEPNODES_SIG[:])
	if !deep && len(nodesBuf) >= 4 {
		if bytes.Equal(nodesBuf[:4], ZNODES_PLAIN_SIG[:]) ||
			bytes.Equal(nodesBuf[:4], ZNODES_COMPRESSED_SIG[:]) {
			return false, fmt.Errorf("level %s has Zdoom extended nodes: %w",
				lvl.Name, ErrUnsupportedNodes)
		}
	}

	var segs []DeepSeg
	var subsectors []DeepSubSector
	var nodes []DeepNode
	if deep {
		Log.Verbose(1, "Level %s has DeePBSP nodes\n", lvl.Name)
		if err := readLumpInto(f, dir, lvl, "SEGS", &segs, 16); err != nil {
			return false, err
		}
		if err := readLumpInto(f, dir, lvl, "SSECTORS", &subsectors, 6); err != nil {
			return false, err
		}
		if err := decodeRecords(nodesBuf[8:], &nodes, 32); err != nil {
			return false, err
		}
	} else {
		// vanilla records are widened to deep ones, so that the rest of the
		// code deals with one format
		var vsegs []Seg
		var vsubsectors []SubSector
		var vnodes []Node
		if err := readLumpInto(f, dir, lvl, "SEGS", &vsegs, 12); err != nil {
			return false, err
		}
		if err := readLumpInto(f, dir, lvl, "SSECTORS", &vsubsectors, 4); err != nil {
			return false, err
		}
		if err := decodeRecords(nodesBuf, &vnodes, 28); err != nil {
			return false, err
		}
		segs = make([]DeepSeg, len(vsegs))
		for i, s := range vsegs {
			segs[i] = DeepSeg{
				StartVertex: uint32(s.StartVertex),
				EndVertex:   uint32(s.EndVertex),
				Angle:       s.Angle,
				Linedef:     s.Linedef,
				Flip:        s.Flip,
				Offset:      s.Offset,
			}
		}
		subsectors = make([]DeepSubSector, len(vsubsectors))
		for i, s := range vsubsectors {
			subsectors[i] = DeepSubSector{
				SegCount: s.SegCount,
				FirstSeg: uint32(s.FirstSeg),
			}
		}
		nodes = make([]DeepNode, len(vnodes))
		for i, n := range vnodes {
			nodes[i] = DeepNode{
				X: n.X, Y: n.Y, Dx: n.Dx, Dy: n.Dy,
				Rbox:   n.Rbox,
				Lbox:   n.Lbox,
				RChild: vanillaChild(n.RChild),
				LChild: vanillaChild(n.LChild),
			}
		}
	}

	geom.Segs = make([]MapSeg, len(segs))
	for i, s := range segs {
		if int(s.StartVertex) >= len(geom.Vertices) || int(s.EndVertex) >= len(geom.Vertices) {
			return deep, fmt.Errorf("seg %d references vertex out of range: %w", i, ErrBadIndex)
		}
		line, err := geom.Line(int(s.Linedef))
		if err != nil {
			return deep, fmt.Errorf("seg %d: %w", i, err)
		}
		seg := &geom.Segs[i]
		seg.idx = i
		seg.V1 = &geom.Vertices[s.StartVertex]
		seg.V2 = &geom.Vertices[s.EndVertex]
		seg.Line = line
		seg.LineIndex = int(s.Linedef)
		seg.Side = 0
		seg.FrontSector = line.FrontSector
		seg.BackSector = line.BackSector
		if s.Flip != 0 {
			seg.Side = 1
			seg.FrontSector = line.BackSector
			seg.BackSector = line.FrontSector
		}
		if seg.FrontSector == nil {
			return deep, fmt.Errorf("seg %d is on the missing side of one-sided linedef %d: %w",
				i, s.Linedef, ErrBadIndex)
		}
	}

	geom.Subsectors = make([]MapSubsector, len(subsectors))
	for i, s := range subsectors {
		first, cnt := int(s.FirstSeg), int(s.SegCount)
		if cnt == 0 || first+cnt > len(geom.Segs) {
			return deep, fmt.Errorf("subsector %d has segs %d..%d (have %d segs): %w",
				i, first, first+cnt-1, len(geom.Segs), ErrBadIndex)
		}
		geom.Subsectors[i] = MapSubsector{
			FirstSeg: first,
			NumSegs:  cnt,
			Sector:   geom.Segs[first].FrontSector,
		}
	}

	geom.Nodes = make([]MapNode, len(nodes))
	for i, n := range nodes {
		node := &geom.Nodes[i]
		node.X = IntToFixed(int(n.X))
		node.Y = IntToFixed(int(n.Y))
		node.Dx = IntToFixed(int(n.Dx))
		node.Dy = IntToFixed(int(n.Dy))
		for j := 0; j < 4; j++ {
			node.BBox[0][j] = IntToFixed(int(n.Rbox[j]))
			node.BBox[1][j] = IntToFixed(int(n.Lbox[j]))
		}
		for side, child := range [2]int32{n.RChild, n.LChild} {
			c := uint32(child)
			if c&0x80000000 != 0 {
				ss := int(c &^ 0x80000000)
				if ss >= len(geom.Subsectors) {
					return deep, fmt.Errorf("node %d child subsector %d: %w", i, ss, ErrBadIndex)
				}
				node.Children[side] = ss | NF_SUBSECTOR
			} else {
				if int(c) >= i {
					// nodes are stored children first, root last
					return deep, fmt.Errorf("node %d child node %d: %w", i, c, ErrBadIndex)
				}
				node.Children[side] = int(c)
			}
		}
	}
	if len(geom.Nodes) == 0 && len(geom.Subsectors) != 1 {
		return deep, fmt.Errorf("level %s has %d subsectors but no nodes: %w",
			lvl.Name, len(geom.Subsectors), ErrBadIndex)
	}
	return deep, nil
}

// vanillaChild moves subsector flag of vanilla node child to where DeePBSP
// has it
func vanillaChild(c int16) int32 {
	u := uint16(c)
	if u&0x8000 != 0 {
		return int32(uint32(u&0x7FFF) | 0x80000000)
	}
	return int32(u)
}

func GetBounds(vertices []Vertex) LevelBounds {
	Xmin := int16(32767)
	Ymin := int16(32767)
	Xmax := int16(-32768)
	Ymax := int16(-32768)
	for _, v := range vertices {
		if v.XPos < Xmin {
			Xmin = v.XPos
		}
		if v.YPos < Ymin {
			Ymin = v.YPos
		}
		if v.XPos > Xmax {
			Xmax = v.XPos
		}
		if v.YPos > Ymax {
			Ymax = v.YPos
		}
	}
	return LevelBounds{
		Xmin: Xmin,
		Ymin: Ymin,
		Xmax: Xmax,
		Ymax: Ymax,
	}
}
