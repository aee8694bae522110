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

const VERSION = "0.10a"

/*
file.wad  Input wad. Nodes must already be built (vanilla or DeePBSP format)

-m<MAP> Level to render, e.g. -mMAP01 or -mE1M1 (default: first level in wad)

-p=x,y,angle Render from this viewpoint, angle in degrees. May be given
	several times. Default is player 1 start

-r= Which portal renderer to run
	s Software (clip columns)
	h Hardware (stencil and depth buffers)
	b Both (default)

-d=<n> Maximum portal recursion depth (default 2)

-s=w,h Screen size (default 320,200)

-f=<deg> Horizontal field of view in degrees (default 90)

-tc Use classic fixed-point viewpoint transform instead of precise one

-t=<n> Number of frames to render in parallel (default: number of cores)

-a <file.png> Draw automap with portals and viewpoints into png file

-o <prefix> Dump stencil/pass buffers of each frame into <prefix>NNN_*.bmp

--path x,y,a:x,y,a[:x,y,a...] Fly through these viewpoints
-n=<frames> Number of frames rendered along the --path (default 35)
--ease <name> Easing along the path: linear (default), inoutquad, inoutsine,
	inoutcubic, outcubic

--portal-action <n> Linedef action denoting portal (default 40)

-v Add verbosity to text output. Use multiple times for increased verbosity.

--cpuprofile <file> Write CPU profile
*/

const (
	RENDERER_SOFTWARE = 1 << iota
	RENDERER_HARDWARE
	RENDERER_BOTH = RENDERER_SOFTWARE | RENDERER_HARDWARE
)

// ViewpointOption is a viewpoint as given on the command line, in map units
// and degrees. Height is derived from the floor below it
type ViewpointOption struct {
	X     int
	Y     int
	Angle int
}

type ProgramConfig struct {
	InputFileName    string
	MapName          string
	Viewpoints       []ViewpointOption
	Renderer         int
	MaxPortalDepth   int
	ScreenWidth      int
	ScreenHeight     int
	FieldOfView      int // degrees
	ClassicTransform bool
	// Function references can not be compared in Go (even for equality).
	// Thus ClassicTransform is an actual config option user might modify,
	// but Transform isn't
	Transform      TransformFunc // don't assign directly! Derived from ClassicTransform
	Threads        int           // 0 means number of cores
	AutomapFile    string
	DumpPrefix     string
	Path           []ViewpointOption
	PathFrames     int
	PathEasing     string
	PortalAction   int
	VerbosityLevel int
	Profile        bool
	ProfilePath    string
}

var config *ProgramConfig // global variable that will be accessed from other threads too

func DefaultConfig() *ProgramConfig {
	return &ProgramConfig{
		Renderer:         RENDERER_BOTH,
		MaxPortalDepth:   2,
		ScreenWidth:      320,
		ScreenHeight:     200,
		FieldOfView:      90,
		ClassicTransform: false,
		Threads:          0,
		PathFrames:       35,
		PathEasing:       "linear",
		PortalAction:     40,
		VerbosityLevel:   0,
	}
}

// Configure initializes config from the command line. Returns false if the
// program should exit (with the exit code returned as second value)
func Configure(args []string) (bool, int) {
	Log.Printf("VigilantPortals ver %s\n", VERSION)
	Log.Printf("Copyright (c)   2024 VigilantDoomer\n")
	Log.Printf("Portal rendering follows the visual portals of Sonic Robo Blast 2, both its\n")
	Log.Printf("software renderer and OpenGL renderer, and is distributed under the terms of\n")
	Log.Printf(" GNU General Public License v2.\n")
	Log.Printf("\n")
	config = DefaultConfig()
	if !config.FromCommandLine(args) {
		Log.Printf("\n")
		return false, 1
	}
	// If input file name was not passed, print help
	if config.InputFileName == "" {
		PrintHelp()
		return false, 0
	}
	config.Derive()
	return true, 0
}

// Derive sets derivative options in config
func (c *ProgramConfig) Derive() {
	c.Transform = TransformFuncFromOption(c.ClassicTransform)
	PORTAL_ACTION = uint16(c.PortalAction)
}

func PrintHelp() {
	Log.Printf("Usage: vigilantportals {-options} filename.wad\n")
	Log.Printf("\n")
	Log.Printf("-m<MAP> Level to render, e.g. -mMAP01 (default: first level in wad)\n")
	Log.Printf("-p=x,y,angle Render from this viewpoint, angle in degrees. May repeat.\n")
	Log.Printf("	Default is player 1 start\n")
	Log.Printf("-r= Which portal renderer to run\n")
	Log.Printf("	s Software (clip columns)\n")
	Log.Printf("	h Hardware (stencil and depth buffers)\n")
	Log.Printf("	b Both (default)\n")
	Log.Printf("-d=<n> Maximum portal recursion depth (default 2)\n")
	Log.Printf("-s=w,h Screen size (default 320,200)\n")
	Log.Printf("-f=<deg> Horizontal field of view in degrees (default 90)\n")
	Log.Printf("-tc Use classic fixed-point viewpoint transform\n")
	Log.Printf("-t=<n> Number of frames to render in parallel (default: number of cores)\n")
	Log.Printf("-a <file.png> Draw automap with portals and viewpoints\n")
	Log.Printf("-o <prefix> Dump stencil/pass buffers of each frame as bmp files\n")
	Log.Printf("--path x,y,a:x,y,a Fly through these viewpoints\n")
	Log.Printf("-n=<frames> Number of frames along the --path (default 35)\n")
	Log.Printf("--ease <name> Easing along the path: linear, inoutquad, inoutsine,\n")
	Log.Printf("	inoutcubic, outcubic\n")
	Log.Printf("--portal-action <n> Linedef action denoting portal (default 40)\n")
	Log.Printf("-v Add verbosity to text output. Use multiple times for increased verbosity.\n")
	Log.Printf("--cpuprofile <file> Write CPU profile\n")
	Log.Printf("\n")
	Log.Printf("Example: vigilantportals -mMAP01 -d=3 -a map01.png -o dump/ file.wad\n")
	Log.Printf("	Renders MAP01 from player 1 start through up to 3 nested portals\n")
	Log.Printf("	with both renderers, draws the automap into map01.png and dumps\n")
	Log.Printf("	buffers into dump/ directory.\n")
	Log.Printf("\n")
}
