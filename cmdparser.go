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
	"strconv"
	"strings"
)

const ( // NumericOrState.whichType values
	ARG_ENABLED = iota
	ARG_DISABLED
	ARG_IS_NUMBER
)

type NumericOrState struct {
	whichType int // see consts above
	value     int
}

// Inspired by from zokumbsp's parser
func (c *ProgramConfig) FromCommandLine(args []string) bool {
	files := make([]string, 0)
	// modifier is where the next argument goes, for options taking a
	// separate argument such as "-a <file>"
	var modifier *string
	modifierName := ""
	skip := false
	for argIdx, arg := range args {
		if len(arg) < 1 {
			break
		}
		if skip {
			skip = false
			continue
		}

		if modifier != nil {
			*modifier = arg
			modifier = nil
			continue
		}

		if arg[0] != '-' {
			files = append(files, arg)
			if len(files) > 1 {
				Log.Error("This program doesn't support specifying more than one input file - aborting.\n")
				return false
			}
			c.InputFileName = files[0]
			continue
		}

		if len(arg) < 2 {
			continue
		}
		switch arg[1] {
		case 'm':
			{
				if len(arg) == 2 {
					Log.Error("Expected level name right after -m, e.g. -mMAP01 - aborting.\n")
					return false
				}
				c.MapName = strings.ToUpper(arg[2:])
			}
		case 'p':
			{
				rest := []byte(arg)[2:]
				if len(rest) == 0 || rest[0] != '=' {
					Log.Error("Expected -p=x,y,angle, got '%s' - aborting.\n", arg)
					return false
				}
				vp, ok := readViewpoint(rest[1:])
				if !ok {
					Log.Error("Couldn't parse viewpoint '%s' - aborting.\n", arg)
					return false
				}
				c.Viewpoints = append(c.Viewpoints, vp)
			}
		case 'r':
			{
				if !c.parseRendererParams([]byte(arg)[2:]) {
					return false
				}
			}
		case 'd':
			{
				nos, rest := readNumeric("-d", []byte(arg)[2:])
				if nos.whichType == ARG_DISABLED {
					nos.value = 0
				} else if nos.whichType == ARG_ENABLED {
					nos.value = DefaultConfig().MaxPortalDepth
				}
				if nos.value > MAX_PORTAL_PASS {
					Log.Error("Portal depth can't exceed %d - truncating.\n", MAX_PORTAL_PASS)
					nos.value = MAX_PORTAL_PASS
				}
				c.MaxPortalDepth = nos.value
				if len(rest) > 0 {
					Log.Error("Syntax error: -d parameter is followed by garbage '%s' - it will be ignored.\n",
						string(rest))
				}
			}
		case 's':
			{
				rest := []byte(arg)[2:]
				ok := len(rest) > 0 && rest[0] == '='
				var w, h int
				if ok {
					ok, w, rest = readNumericOnly(rest[1:])
				}
				if ok && len(rest) > 0 && rest[0] == ',' {
					ok, h, rest = readNumericOnly(rest[1:])
				} else {
					ok = false
				}
				if !ok || len(rest) > 0 || w < 16 || h < 16 || w > 4096 || h > 4096 {
					Log.Error("Expected -s=width,height with both between 16 and 4096, got '%s' - aborting.\n",
						arg)
					return false
				}
				c.ScreenWidth = w
				c.ScreenHeight = h
			}
		case 'f':
			{
				nos, _ := readNumeric("-f", []byte(arg)[2:])
				if nos.whichType != ARG_IS_NUMBER || nos.value < 1 || nos.value > 179 {
					Log.Error("Expected -f=<degrees> between 1 and 179 - ignoring '%s'.\n", arg)
				} else {
					c.FieldOfView = nos.value
				}
			}
		case 't':
			{
				rest := []byte(arg)[2:]
				if len(rest) > 0 && rest[0] == 'c' {
					c.ClassicTransform, rest = isEnabled(rest[1:])
					if len(rest) > 0 {
						Log.Error("Syntax error: -tc parameter is followed by garbage '%s' - it will be ignored.\n",
							string(rest))
					}
					break
				}
				nos, _ := readNumeric("-t", rest)
				if nos.whichType == ARG_DISABLED {
					c.Threads = 1
				} else if nos.whichType == ARG_ENABLED {
					// to auto mode
					c.Threads = 0
				} else {
					c.Threads = nos.value
				}
			}
		case 'n':
			{
				nos, _ := readNumeric("-n", []byte(arg)[2:])
				if nos.whichType != ARG_IS_NUMBER || nos.value < 2 {
					Log.Error("Expected -n=<frames> with at least 2 frames - ignoring '%s'.\n", arg)
				} else {
					c.PathFrames = nos.value
				}
			}
		case 'v':
			{
				// "count" type: -v, -vv, -vvv, etc.
				vs := 0
				barg := []byte(arg)[1:]
				for i := 0; i < len(arg)-1; i++ {
					if barg[i] == 'v' {
						vs++
					} else {
						break
					}
				}
				c.VerbosityLevel += vs
			}
		case 'a', 'o':
			{
				if len(arg) != 2 {
					Log.Error("Unrecognized modifier '%s' (expected '%s <file>', space between '%s' and file name) - aborting.\n",
						arg, arg[:2], arg[:2])
					return false
				}
				if arg[1] == 'a' {
					modifier = &c.AutomapFile
				} else {
					modifier = &c.DumpPrefix
				}
				modifierName = arg
			}
		case '-':
			{
				// parameter starts with double hyphen, e.g. --something, and
				// its value follows it
				if argIdx+1 >= len(args) || args[argIdx+1] == "" {
					Log.Error("Modifier '%s' was present without a value following it - aborting.\n",
						arg)
					return false
				}
				value := args[argIdx+1]
				skip = true
				if bytes.Equal([]byte(arg), []byte("--cpuprofile")) {
					c.Profile = true
					c.ProfilePath = value
				} else if arg == "--path" {
					path, ok := readPath(value)
					if !ok {
						Log.Error("Couldn't parse path '%s', expected x,y,angle:x,y,angle... - aborting.\n",
							value)
						return false
					}
					c.Path = path
				} else if arg == "--ease" {
					if _, ok := easings[value]; !ok {
						Log.Error("Unknown easing '%s' - aborting.\n", value)
						return false
					}
					c.PathEasing = value
				} else if arg == "--portal-action" {
					ok, v, rest := readNumericOnly([]byte(value))
					if !ok || len(rest) > 0 || v == 0 || v > 0xFFFF {
						Log.Error("Invalid portal action '%s' - aborting.\n", value)
						return false
					}
					c.PortalAction = v
				} else {
					Log.Error("Unrecognised argument '%s' - aborting.\n", arg)
					return false
				}
			}
		default:
			{
				Log.Error("Unrecognised argument '%s' - aborting.\n", arg)
				return false
			}
		}
	}
	if modifier != nil {
		Log.Error("Modifier '%s' was present without a file name following it - aborting.\n",
			modifierName)
		return false
	}
	return true
}

func (c *ProgramConfig) parseRendererParams(p []byte) bool {
	if len(p) != 2 || p[0] != '=' {
		Log.Error("Expected -r=s, -r=h or -r=b - aborting.\n")
		return false
	}
	switch p[1] {
	case 's':
		c.Renderer = RENDERER_SOFTWARE
	case 'h':
		c.Renderer = RENDERER_HARDWARE
	case 'b':
		c.Renderer = RENDERER_BOTH
	default:
		Log.Error("Unknown renderer '%c', expected s, h or b - aborting.\n", p[1])
		return false
	}
	return true
}

func isEnabled(arg []byte) (bool, []byte) {
	if len(arg) == 0 {
		return true, arg
	}
	if arg[0] == '+' {
		return true, arg[1:]
	} else if arg[0] == '-' {
		return false, arg[1:]
	} else {
		return true, arg
	}
}

// a+, a-, or a=<numeric_value_without_sign>
func readNumeric(prefix string, arg []byte) (NumericOrState, []byte) {
	if len(arg) == 0 {
		return NumericOrState{whichType: ARG_ENABLED}, arg
	}
	if arg[0] == '+' {
		return NumericOrState{whichType: ARG_ENABLED}, arg[1:]
	} else if arg[0] == '-' {
		return NumericOrState{whichType: ARG_DISABLED}, arg[1:]
	} else if arg[0] == '=' {
		// !!! doesn't support negative values, and values with explicit "+"
		// sign either
		t, v, rest := readNumericOnly(arg[1:])
		if t {
			return NumericOrState{
				whichType: ARG_IS_NUMBER,
				value:     v,
			}, rest
		} else {
			Log.Error("Couldn't properly parse '%s=%s'. Some parameters are going to be ignored as the result.\n", prefix, string(arg))
			return NumericOrState{
				whichType: ARG_ENABLED,
			}, arg[:0] // ignore the rest of parameters
		}
	} else {
		return NumericOrState{whichType: ARG_ENABLED}, arg
	}
}

func readNumericOnly(arg []byte) (bool, int, []byte) {
	if len(arg) == 0 {
		return false, 0, arg
	}
	l := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if '0' <= c && c <= '9' {
			l++
		} else {
			break
		}
	}
	if l > 0 {
		v, err := strconv.Atoi(string(arg[:l]))
		if err != nil {
			Log.Error("value '%s' was too big to interpret as int.\n",
				string(arg[:l]))
			return false, 0, arg[l:]
		}
		return true, v, arg[l:]
	}
	return false, 0, arg
}

// readSignedOnly is readNumericOnly that also takes a leading minus, map
// coordinates are often negative
func readSignedOnly(arg []byte) (bool, int, []byte) {
	if len(arg) > 0 && arg[0] == '-' {
		t, v, rest := readNumericOnly(arg[1:])
		return t, -v, rest
	}
	return readNumericOnly(arg)
}

// x,y,angle
func readViewpoint(arg []byte) (ViewpointOption, bool) {
	var vp ViewpointOption
	var ok bool
	ok, vp.X, arg = readSignedOnly(arg)
	if !ok || len(arg) == 0 || arg[0] != ',' {
		return vp, false
	}
	ok, vp.Y, arg = readSignedOnly(arg[1:])
	if !ok || len(arg) == 0 || arg[0] != ',' {
		return vp, false
	}
	ok, vp.Angle, arg = readSignedOnly(arg[1:])
	if !ok || len(arg) > 0 {
		return vp, false
	}
	if vp.X < -32768 || vp.X > 32767 || vp.Y < -32768 || vp.Y > 32767 {
		return vp, false
	}
	return vp, true
}

// x,y,angle:x,y,angle[:...], at least two points
func readPath(s string) ([]ViewpointOption, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return nil, false
	}
	res := make([]ViewpointOption, 0, len(parts))
	for _, part := range parts {
		vp, ok := readViewpoint([]byte(part))
		if !ok {
			return nil, false
		}
		res = append(res, vp)
	}
	return res, true
}
