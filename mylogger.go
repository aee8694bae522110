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

// Central log (stdout/stderr) of the program
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/term"
)

type MyLogger struct {
	// Writing to the same slot allows to clobber stuff so that we don't see the
	// same thing written over and over again
	slots []string
	// Mutex is used to order writes to stdin and stderr, as well as Sync call
	mu sync.Mutex
	// progress line is on screen and must be erased before printing anything
	progressShown bool
	tty           bool
}

// Logs specific to one frame being rendered. Their output is not forwarded
// to the stdout or stdin, but is instead buffered until merged into main log
// of MyLogger type, in the order frames were requested, no matter in which
// order threads finished them
type MiniLogger struct {
	buf   bytes.Buffer
	slots []string
}

// Logger is what renderers write to, MyLogger and MiniLogger both serve
type Logger interface {
	Printf(s string, a ...interface{})
	Verbose(verbosityLevel int, s string, a ...interface{})
}

func CreateLogger() *MyLogger {
	log := new(MyLogger)
	log.tty = term.IsTerminal(int(os.Stdout.Fd()))
	return log
}

var Log = CreateLogger()

var syslog = log.New(os.Stdout, "", 0)
var errlog = log.New(os.Stderr, "", 0)

// verbosity is the configured verbosity level. Config might be not
// initialized yet when banner is printed
func verbosity() int {
	if config == nil { // reference to global: config
		return 0
	}
	return config.VerbosityLevel
}

// Your generic printf to let user see things
func (log *MyLogger) Printf(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.eraseProgress()
	syslog.Printf(s, a...)
}

// As generic as printf, but writes to stderr instead of stdout
// Does NOT interrupt execution of the program
func (log *MyLogger) Error(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.eraseProgress()
	errlog.Printf(s, a...)
}

// For advanced users or users that are curious, or programmers, there is
// stuff they might want to see but only when they can really bother to spend
// time reading it
func (log *MyLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	if verbosityLevel <= verbosity() {
		log.mu.Lock()
		defer log.mu.Unlock()
		log.eraseProgress()
		syslog.Printf(s, a...)
	}
}

// Panicking is not a good thing, but at least we can now use formatted printing
// for it
func (log *MyLogger) Panic(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	panic(fmt.Sprintf(s, a...))
}

// Progress shows how many frames out of total are done on a single line that
// is rewritten each time. Only when stdout is a terminal, as otherwise it
// would just litter redirected output
func (log *MyLogger) Progress(done, total int) {
	if !log.tty {
		return
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 20 {
		width = 80
	}
	s := fmt.Sprintf("Rendering frames: %d/%d", done, total)
	if len(s) >= width {
		s = s[:width-1]
	}
	fmt.Fprintf(os.Stdout, "\r%s", s)
	log.progressShown = true
	if done >= total {
		fmt.Fprintf(os.Stdout, "\n")
		log.progressShown = false
	}
}

// must be called with mutex held
func (log *MyLogger) eraseProgress() {
	if !log.progressShown {
		return
	}
	fmt.Fprintf(os.Stdout, "\r\x1b[K")
	log.progressShown = false
}

// Writes to the slot, clobbering whatever was there before us in that same slot
// Used for warnings that are worthless to repeat if they concern the same
// thing
func (log *MyLogger) Push(slotNumber int, s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	for slotNumber >= len(log.slots) {
		log.slots = append(log.slots, "")
	}
	log.slots[slotNumber] = fmt.Sprintf(s, a...)
}

// Now that slots have been written over multiple times, time to see what was
// written to begin with
func (log *MyLogger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.eraseProgress()
	for _, slot := range log.slots {
		if len(slot) > 0 {
			syslog.Print(slot)
		}
	}
	log.slots = nil
}

// Sync is used to wait until all messages are written to the output
func (log *MyLogger) Sync() {
	log.mu.Lock()
	log.mu.Unlock()
}

func (log *MyLogger) Merge(mlog *MiniLogger, preface string) {
	if mlog == nil {
		return
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.eraseProgress()
	if len(preface) > 0 {
		syslog.Print(preface)
	}
	content := mlog.buf.String()
	if len(content) > 0 {
		syslog.Print(content)
	}
	// slot numbers are shared: a later frame clobbers what earlier one pushed
	for i, slot := range mlog.slots {
		if len(slot) == 0 {
			continue
		}
		for i >= len(log.slots) {
			log.slots = append(log.slots, "")
		}
		log.slots[i] = slot
	}
}

func (mlog *MiniLogger) Printf(s string, a ...interface{}) {
	if mlog == nil {
		Log.Printf(s, a...)
		return
	}
	mlog.buf.WriteString(fmt.Sprintf(s, a...))
}

func (mlog *MiniLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	if mlog == nil {
		Log.Verbose(verbosityLevel, s, a...)
		return
	}
	if verbosityLevel <= verbosity() {
		mlog.buf.WriteString(fmt.Sprintf(s, a...))
	}
}

func (mlog *MiniLogger) Push(slotNumber int, s string, a ...interface{}) {
	if mlog == nil {
		Log.Push(slotNumber, s, a...)
		return
	}
	for slotNumber >= len(mlog.slots) {
		mlog.slots = append(mlog.slots, "")
	}
	mlog.slots[slotNumber] = fmt.Sprintf(s, a...)
}

// String returns what was buffered so far
func (mlog *MiniLogger) String() string {
	return mlog.buf.String()
}

func CreateMiniLogger() *MiniLogger {
	return new(MiniLogger)
}
