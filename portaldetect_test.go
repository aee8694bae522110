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
	"reflect"
	"testing"
)

// portalLines returns a geometry of n separate lines, with action and tag
// set from the given pairs
func portalLines(specs ...[2]uint16) *Geometry {
	coords := make([][4]int, len(specs))
	for i := range specs {
		coords[i] = [4]int{i * 100, 0, i*100 + 64, 0}
	}
	g := testLineGeometry(coords...)
	for i, s := range specs {
		g.Lines[i].Action = s[0]
		g.Lines[i].Tag = s[1]
	}
	return g
}

func TestDetectPortalPairs(t *testing.T) {
	g := portalLines(
		[2]uint16{40, 3}, // 0
		[2]uint16{0, 3},  // 1, not a portal, tag alone means nothing
		[2]uint16{40, 0}, // 2, zero tag ignored
		[2]uint16{40, 7}, // 3, no other end
		[2]uint16{40, 3}, // 4
		[2]uint16{40, 5}, // 5
		[2]uint16{40, 5}, // 6
		[2]uint16{40, 5}, // 7, third line with the same tag
	)
	pairs := DetectPortalPairs(g)
	if pairs == nil {
		t.Fatalf("no pairs found")
	}
	want := map[int]int{0: 4, 4: 0, 5: 6, 6: 5, 7: 5}
	for line := 0; line < len(g.Lines); line++ {
		exit, ok := want[line]
		if !ok {
			exit = -1
		}
		if got := pairs.Exit(line); got != exit {
			t.Errorf("exit of line %d: got %d, want %d", line, got, exit)
		}
	}
	if pairs.Len() != len(want) {
		t.Errorf("%d entrances, want %d", pairs.Len(), len(want))
	}
	if got := pairs.Entrances(); !reflect.DeepEqual(got, []int{0, 4, 5, 6, 7}) {
		t.Errorf("entrances %v", got)
	}
}

func TestDetectPortalPairsNone(t *testing.T) {
	g := portalLines([2]uint16{40, 1}, [2]uint16{40, 2}, [2]uint16{11, 1})
	pairs := DetectPortalPairs(g)
	if pairs != nil {
		t.Errorf("incomplete portals produced pairs %v", pairs.Entrances())
	}
	// nil pairs answer queries
	if pairs.Exit(0) != -1 || pairs.Len() != 0 || pairs.Entrances() != nil {
		t.Errorf("nil pairs misbehave")
	}
}

func TestDetectPortalPairsNoFrontSector(t *testing.T) {
	g := portalLines([2]uint16{40, 1}, [2]uint16{40, 1}, [2]uint16{40, 1})
	g.Lines[0].FrontSector = nil
	pairs := DetectPortalPairs(g)
	if pairs.Exit(1) != 2 || pairs.Exit(2) != 1 || pairs.Exit(0) != -1 {
		t.Errorf("line without front sector must be skipped")
	}
}

func TestDetectPortalPairsCustomAction(t *testing.T) {
	defer func() { PORTAL_ACTION = 40 }()
	PORTAL_ACTION = 300
	g := portalLines([2]uint16{40, 1}, [2]uint16{300, 1}, [2]uint16{40, 1}, [2]uint16{300, 1})
	pairs := DetectPortalPairs(g)
	if pairs.Exit(1) != 3 || pairs.Exit(3) != 1 || pairs.Exit(0) != -1 || pairs.Exit(2) != -1 {
		t.Errorf("action override not honoured: entrances %v", pairs.Entrances())
	}
}
