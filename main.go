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

// -- This file is where the program entry is.
// VigilantPortals renders frames of a Doom level through visual portals -
// pairs of linedefs showing what is in front of each other - with both the
// software (clip columns) and the hardware (stencil and depth buffers) portal
// renderers, and reports what each of them did: how many passes were
// rendered at each depth, what the portal clip lines culled, whether the
// stencil buffer was restored after each frame.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"
)

func main() {
	os.Exit(run())
}

// run is the program, returning exit code. Deferred cleanup happens before
// os.Exit is called
func run() int {
	timeStart := time.Now()
	defer Log.Sync()

	// before config can be legitimately accessed, must call Configure()
	if cont, code := Configure(os.Args[1:]); !cont {
		return code
	}

	if config.Profile {
		f, err := os.Create(config.ProfilePath)
		if err != nil {
			Log.Printf("Could not create CPU profile: %s", err.Error())
		} else {
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				Log.Printf("Could not start CPU profile: %s", err.Error())
			} else {
				defer pprof.StopCPUProfile()
			}
		}
	}

	config.InputFileName, _ = filepath.Abs(config.InputFileName)
	mainFileControl := FileControl{}
	defer mainFileControl.Shutdown()

	f, err := mainFileControl.OpenInputFile(config.InputFileName)
	if err != nil {
		Log.Error("An error has occured while trying to read %s: %s\n",
			config.InputFileName, err)
		return 1
	}
	dir, err := ReadWadDirectory(f)
	if err != nil {
		if errors.Is(err, ErrNotAWad) {
			Log.Error("The input file is NOT a wad.\n")
		} else {
			Log.Error("%s\n", err.Error())
		}
		return 1
	}
	if dir.IWAD {
		Log.Printf("The input file is an IWAD\n")
	} else {
		Log.Printf("The input file is a PWAD\n")
	}

	lvlLumps, err := dir.FindLevel(config.MapName)
	if err != nil {
		Log.Error("Unable to find the level: %s\n", err.Error())
		return 1
	}
	lvl, err := LoadLevel(f, dir, lvlLumps)
	if err != nil {
		Log.Error("Couldn't load level %s: %s\n", lvlLumps.Name, err.Error())
		return 1
	}
	Log.Printf("Level %s: %d linedefs, %d segs, %d subsectors, %d nodes\n",
		lvl.Name, len(lvl.Geom.Lines), len(lvl.Geom.Segs), len(lvl.Geom.Subsectors),
		len(lvl.Geom.Nodes))

	pairs := DetectPortalPairs(lvl.Geom)
	if pairs.Len() == 0 {
		Log.Printf("Level has no portals (linedef action %d), frames will be rendered without them.\n",
			PORTAL_ACTION)
	} else {
		Log.Printf("Found %d portal lines.\n", pairs.Len())
		for _, entrance := range pairs.Entrances() {
			Log.Verbose(1, "  linedef %d leads to linedef %d\n", entrance, pairs.Exit(entrance))
		}
	}

	views, err := BuildViewpoints(lvl)
	if err != nil {
		Log.Error("%s\n", err.Error())
		return 1
	}

	setup := NewFrameSetup(lvl.Geom, pairs)
	var sink FrameSink
	if config.DumpPrefix != "" {
		sink = NewBufferDumper(config.DumpPrefix, &mainFileControl, setup.Proj).Dump
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	Log.Printf("Rendering %d frames at %dx%d, portal depth up to %d...\n",
		len(views), setup.Proj.Width, setup.Proj.Height, setup.MaxDepth)
	reports, err := RenderBatch(ctx, setup, views, config.Threads, sink)
	if err != nil {
		Log.Error("Rendering aborted: %s\n", err.Error())
		return 1
	}
	frameOk := PrintReport(reports, setup)
	Log.Flush()

	if config.AutomapFile != "" {
		err = SaveAutomap(&mainFileControl, config.AutomapFile, lvl.Geom, pairs, views)
		if err != nil {
			Log.Error("Couldn't write automap: %s\n", err.Error())
			return 1
		}
	}

	if !mainFileControl.Success() {
		return 1
	}
	Log.Printf("%d frames rendered in %s\n", len(views), time.Since(timeStart))
	if !frameOk {
		Log.Error("Some frames left renderer state unrestored, see above.\n")
		return 2
	}
	return 0
}

// BuildViewpoints makes the list of viewpoints to render frames from: the
// ones given with -p, followed by the flythrough along --path. If neither
// was given, player 1 start is used
func BuildViewpoints(lvl *Level) ([]Viewpoint, error) {
	var views []Viewpoint
	for _, opt := range config.Viewpoints {
		views = append(views, ViewpointFromOption(lvl.Geom, opt))
	}
	if len(config.Path) > 0 {
		path := make([]Viewpoint, 0, len(config.Path))
		for _, opt := range config.Path {
			path = append(path, ViewpointFromOption(lvl.Geom, opt))
		}
		views = append(views, Flythrough(path, config.PathFrames, easings[config.PathEasing])...)
	}
	if len(views) > 0 {
		return views, nil
	}
	if len(lvl.Starts) == 0 {
		return nil, errors.New("level has no player 1 start, specify viewpoint with -p=x,y,angle")
	}
	return lvl.Starts[:1], nil
}

// ViewpointFromOption places the viewpoint at player's eye height above the
// floor it is over
func ViewpointFromOption(geom *Geometry, opt ViewpointOption) Viewpoint {
	view := Viewpoint{
		X:     IntToFixed(opt.X),
		Y:     IntToFixed(opt.Y),
		Angle: DegreesToAngle(float64(opt.Angle)),
	}
	if sec := geom.PointInSector(view.X, view.Y); sec != nil {
		view.Z = sec.FloorHeight + VIEWHEIGHT
	}
	return view
}
