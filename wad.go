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
	"strings"
)

var ErrNotAWad = errors.New("not a wad")
var ErrNoLevel = errors.New("level not found")

var LUMP_SORT_ORDER = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR"}

// Renderer can't do without any of these: there is no nodebuilder here to
// make up for missing SEGS, SSECTORS or NODES
var LUMP_MUSTEXIST = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS"}

type WadDirectory struct {
	Header WadHeader
	Lumps  []LumpEntry
	IWAD   bool
}

// LevelLumps locates lumps of one level in the directory
type LevelLumps struct {
	Name        string
	DirIndex    int // marker lump
	LevelFormat int
	lumps       map[string]int
}

// ByteSliceBeforeTerm returns a part of the original bytes
// excluding everything that starts with zero-byte character.
// This allows string operations (such as pattern matching) to be performed
// correctly on returned value
func ByteSliceBeforeTerm(b []byte) []byte {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return b
	} else {
		return b[:i]
	}
}

func ReadWadDirectory(f io.ReadSeeker) (*WadDirectory, error) {
	dir := &WadDirectory{}
	wh := &dir.Header
	err := binary.Read(f, binary.LittleEndian, wh)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file header: %w", err)
	}
	if wh.MagicSig == IWAD_MAGIC_SIG {
		dir.IWAD = true
	} else if wh.MagicSig != PWAD_MAGIC_SIG {
		return nil, ErrNotAWad
	}
	Log.Verbose(1, "The directory contains %d lumps and starts at %d byte offset\n",
		wh.LumpCount, wh.DirectoryStart)
	_, err = f.Seek(int64(wh.DirectoryStart), io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("couldn't move to wad's directory structure (%d offset): %w",
			wh.DirectoryStart, err)
	}
	// Read in whole directory at once
	dir.Lumps = make([]LumpEntry, wh.LumpCount)
	err = binary.Read(f, binary.LittleEndian, dir.Lumps)
	if err != nil {
		return nil, fmt.Errorf("failed to read lump info from a wad's directory: %w", err)
	}
	return dir, nil
}

// Levels lists levels in the order their markers appear. A level is the
// marker followed by the lumps with known level lump names
func (d *WadDirectory) Levels() []*LevelLumps {
	var res []*LevelLumps
	var cur *LevelLumps
	for i, entry := range d.Lumps {
		bname := ByteSliceBeforeTerm(entry.Name[:])
		if IsALevel(bname) {
			cur = &LevelLumps{
				Name:        string(bname),
				DirIndex:    i,
				LevelFormat: FORMAT_DOOM,
				lumps:       make(map[string]int),
			}
			res = append(res, cur)
			continue
		}
		if cur == nil {
			continue
		}
		sname := string(bname)
		if !isLevelLump(sname) {
			// level ended
			cur = nil
			continue
		}
		if sname == "BEHAVIOR" {
			cur.LevelFormat = FORMAT_HEXEN
		}
		cur.lumps[sname] = i
	}
	return res
}

func isLevelLump(name string) bool {
	if name == "SCRIPTS" { // source code for BEHAVIOR lump
		return true
	}
	for _, s := range LUMP_SORT_ORDER {
		if s == name {
			return true
		}
	}
	return false
}

// FindLevel returns the level with the given marker name, or the first level
// of the wad if name is empty
func (d *WadDirectory) FindLevel(name string) (*LevelLumps, error) {
	levels := d.Levels()
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels in wad: %w", ErrNoLevel)
	}
	if name == "" {
		return levels[0], nil
	}
	name = strings.ToUpper(name)
	for _, lvl := range levels {
		if lvl.Name == name {
			return lvl, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNoLevel)
}

// Missing lists mandatory lumps the level doesn't have
func (l *LevelLumps) Missing() []string {
	var res []string
	for _, name := range LUMP_MUSTEXIST {
		if _, ok := l.lumps[name]; !ok {
			res = append(res, name)
		}
	}
	return res
}

// Lump returns directory index of the named lump of the level, -1 if absent
func (l *LevelLumps) Lump(name string) int {
	if idx, ok := l.lumps[name]; ok {
		return idx
	}
	return -1
}

func (d *WadDirectory) ReadLump(f io.ReaderAt, idx int) ([]byte, error) {
	le := d.Lumps[idx]
	buf := make([]byte, le.Size)
	if le.Size == 0 {
		return buf, nil
	}
	_, err := f.ReadAt(buf, int64(le.FilePos))
	if err != nil {
		return nil, fmt.Errorf("reading lump %s: %w",
			string(ByteSliceBeforeTerm(le.Name[:])), err)
	}
	return buf, nil
}
