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
	"os"
	"path/filepath"
	"sync"
)

// Controls lifetime of the input wad and of every output file (automap,
// buffer dumps) - ensures they are properly closed by the end of program,
// regardless of success and failure. Output is written into temporary files
// next to their destinations, which replace the destinations on success or
// are deleted on failure, so that an aborted run never leaves a half written
// png or bmp behind
type FileControl struct {
	success       bool
	fin           *os.File
	inputFileName string
	outputs       []pendingOutput
	// frames rendered concurrently write their dumps concurrently
	mu sync.Mutex
}

type pendingOutput struct {
	tmpName  string
	destName string
}

func (fc *FileControl) OpenInputFile(inputFileName string) (*os.File, error) {
	fc.inputFileName = inputFileName
	var err error
	fc.fin, err = os.Open(inputFileName)
	if err != nil {
		fc.fin = nil
	}
	return fc.fin, err
}

// OutputFile creates a temporary file that will become destName when
// Success is called. The caller closes the returned file
func (fc *FileControl) OutputFile(destName string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(destName), "tmp")
	if err != nil {
		return nil, err
	}
	fc.mu.Lock()
	fc.outputs = append(fc.outputs, pendingOutput{
		tmpName:  f.Name(),
		destName: destName,
	})
	fc.mu.Unlock()
	return f, nil
}

// OutputPath is OutputFile for writers that want a file name rather than an
// open file
func (fc *FileControl) OutputPath(destName string) (string, error) {
	f, err := fc.OutputFile(destName)
	if err != nil {
		return "", err
	}
	name := f.Name()
	return name, f.Close()
}

// Success closes the input and moves every output into place
func (fc *FileControl) Success() bool {
	if fc.fin == nil {
		Log.Panic("Sanity check failed: descriptor invalid.\n")
	}
	suc := true
	if err := fc.fin.Close(); err != nil {
		Log.Error("Closing input file returned error: %s.\n", err.Error())
		suc = false
	}
	fc.fin = nil
	for _, out := range fc.outputs {
		if err := os.Rename(out.tmpName, out.destName); err != nil {
			Log.Error("Couldn't move temporary file '%s' to '%s': %s\n",
				out.tmpName, out.destName, err.Error())
			suc = false
			os.Remove(out.tmpName)
			continue
		}
		Log.Verbose(1, "Written %s\n", out.destName)
	}
	fc.outputs = nil
	fc.success = true
	return suc
}

// Ensures we close all files when program exits. Temporary files are getting
// deleted at this moment
func (fc *FileControl) Shutdown() {
	if fc.success {
		return
	}
	if fc.fin != nil {
		if err := fc.fin.Close(); err != nil {
			Log.Error("Couldn't close input file '%s': %s\n", fc.inputFileName, err.Error())
		}
	}
	for _, out := range fc.outputs {
		if err := os.Remove(out.tmpName); err != nil && !os.IsNotExist(err) {
			Log.Error("Got error when trying to delete a temporary file '%s': %s\n",
				out.tmpName, err.Error())
		}
	}
	fc.outputs = nil
}
