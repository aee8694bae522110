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

// Wad specifications for Doom-engine family of games, only as much as
// needed to get the level geometry and player start out of a wad
package main

import (
	"regexp"
)

// Both brought in accordance with Prboom-Plus 2.6.1um map name ranges, except
// that E1M0x is possible (when it is probably shouldn't be) since I don't
// want to complicate these regexp's (and E9M97 is perfectly legal, for example)
var MAP_SEQUEL *regexp.Regexp = regexp.MustCompile(`^MAP[0-9][0-9]$`)
var MAP_ExMx *regexp.Regexp = regexp.MustCompile(`^E[1-9]M[0-9][0-9]?$`)

// This constant group is for internal program usage only
const (
	FORMAT_DOOM = iota
	FORMAT_HEXEN
)

// Starting signature "xNd4\0\0\0\0" of NODES produced by DeePBSP, some ports
// do support this nodes format (PrBoom-plus v2.5.1.5 confirmed, Risen3D also
// per zdoom.org wiki)
var DEEPNODES_SIG = [8]byte{0x78, 0x4E, 0x64, 0x34, 0x00, 0x00, 0x00, 0x00}

// Starting signature "XNOD" of NODES for Zdoom extended non-GL nodes format.
// Unlike Deep NODES, this signature, together with some bytes following it, may
// accidentally occur in a valid vanilla nodes format nodes data
var ZNODES_PLAIN_SIG = [4]byte{0x58, 0x4E, 0x4F, 0x44}

// Starting signature "ZNOD" of NODES for Zdoom extended COMPRESSED non-GL
// nodes format
var ZNODES_COMPRESSED_SIG = [4]byte{0x5A, 0x4E, 0x4F, 0x44}

const IWAD_MAGIC_SIG = uint32(0x44415749) // ASCII - 'IWAD'
const PWAD_MAGIC_SIG = uint32(0x44415750) // ASCII - 'PWAD'

// Player 1 start
const THING_PLAYER1 = 1

const LF_IMPASSABLE = uint16(0x0001)
const LF_TWOSIDED = uint16(0x0004)

const SIDEDEF_NONE = uint16(0xFFFF)

const DOOM_LINEDEF_SIZE = 14  // Size of "Linedef" struct
const HEXEN_LINEDEF_SIZE = 16 // Size of "HexenLinedef" struct

const DOOM_SIDEDEF_SIZE = 30 // Size of "Sidedef" struct
const DOOM_SECTOR_SIZE = 26  // Size of "Sector" struct

// Wad header, 12 bytes.
type WadHeader struct {
	MagicSig       uint32
	LumpCount      uint32 // vanilla treats this as signed int32
	DirectoryStart uint32 // vanilla treats this as signed int32
}

// Lump entries listed one after another comprise the directory,
// the first such lump entry is found at WadHeader.DirectoryStart offset into
// the wad file.
// Each lump entry is 16 bytes long
type LumpEntry struct {
	FilePos uint32 // vanilla treats this as signed int32
	Size    uint32 // vanilla treats this as signed int32
	Name    [8]byte
}

// This is Doom/Heretic/Strife thing. Not Hexen thing
type Thing struct {
	XPos  int16
	YPos  int16
	Angle int16
	Type  int16
	Flags int16
}

// Hexen Thing
type HexenThing struct {
	TID            int16
	XPos           int16
	YPos           int16
	StartingHeight int16
	Angle          int16
	Type           int16
	Flags          int16
	Action         uint8
	Args           [5]byte
}

// Doom/Heretic linedef format
type Linedef struct {
	// Vanilla treats ALL fields as signed int16
	StartVertex uint16
	EndVertex   uint16
	Flags       uint16
	Action      uint16
	Tag         uint16
	FrontSdef   uint16 // Front Sidedef number
	BackSdef    uint16 // Back Sidedef number (0xFFFF special value for one-sided line)
}

// Hexen linedef format
type HexenLinedef struct {
	// Vanilla treats ALL fields as signed
	StartVertex uint16
	EndVertex   uint16
	Flags       uint16
	Action      uint8
	Arg1        uint8 // serves as line tag for portals
	Arg2        uint8
	Arg3        uint8
	Arg4        uint8
	Arg5        uint8
	FrontSdef   uint16
	BackSdef    uint16
}

type Sidedef struct {
	XOffset int16
	YOffset int16
	UpName  [8]byte // name of upper texture
	LoName  [8]byte // name of lower texture
	MidName [8]byte // name of middle texture
	Sector  uint16  // sector number; vanilla treats this as signed int16
}

// A Vertex is a coordinate on the map, and can be used in both linedefs and segs
// as starting(ending) point
type Vertex struct {
	XPos int16
	YPos int16
}

type Seg struct {
	// Vanilla treats ALL fields as signed int16
	StartVertex uint16
	EndVertex   uint16
	Angle       int16
	Linedef     uint16
	Flip        int16  // 0 - seg follows same direction as linedef, 1 - the opposite
	Offset      uint16 // distance along linedef to start of seg
}

// DeePBSP "standard V4" seg format
type DeepSeg struct {
	StartVertex uint32
	EndVertex   uint32
	Angle       int16
	Linedef     uint16
	Flip        int16
	Offset      uint16
}

// Segs of a subsector are consecutive in SEGS lump, starting at FirstSeg
type SubSector struct {
	// Vanilla treats ALL fields as signed int16
	SegCount uint16 // number of Segs in this SubSector
	FirstSeg uint16 // first Seg number
}

// DeePBSP "standard V4" subsector format
type DeepSubSector struct {
	SegCount uint16
	FirstSeg uint32
}

type Node struct {
	X      int16
	Y      int16
	Dx     int16
	Dy     int16
	Rbox   [4]int16 // right bounding box
	Lbox   [4]int16 // left bounding box
	RChild int16    // -| if sign bit = 0 then this is a subnode number
	LChild int16    // ->     else 0-14 bits are subsector number
}

// DeePBSP "standard V4" node format
type DeepNode struct {
	X      int16
	Y      int16
	Dx     int16
	Dy     int16
	Rbox   [4]int16 // right bounding box
	Lbox   [4]int16 // left bounding box
	RChild int32    // -| if sign bit = 0 then this is a subnode number
	LChild int32    // ->     else 0-30 bits are subsector number
}

const BB_TOP = 0
const BB_BOTTOM = 1
const BB_LEFT = 2
const BB_RIGHT = 3

type Sector struct {
	FloorHeight int16
	CeilHeight  int16
	FloorName   [8]byte
	CeilName    [8]byte
	LightLevel  uint16
	Special     uint16
	Tag         uint16
}

// Returns whether the string in lumpName represents Doom level marker,
// i.e. MAP02, E3M1
func IsALevel(lumpName []byte) bool {
	return MAP_SEQUEL.Match(lumpName) || MAP_ExMx.Match(lumpName)
}
