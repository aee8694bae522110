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

// Implements ring buffer (a power of two queue). Not intended to be
// thread-safe or such, just when I need a fast queue.
// I encountered this article by someone actually good at programming (unlike
// me) when was searching for a smart way to do this, it is probable my
// implementation does not do it justice, though:
// https://www.snellman.net/blog/archive/2016-12-13-ring-buffers/

const MAX_RING_CAPACITY = uint32(2147483648)

// PortalRing is the software renderer's portal queue: portals are rendered
// in the order they were discovered, and the ones discovered while rendering
// are queued behind. Unlike a fixed ring, it grows when full
type PortalRing struct {
	read     uint32
	write    uint32
	capacity uint32 // power of two
	buf      []*Portal
}

// The argument capacity is how many portals you expect to be queued at once.
// This function will upsize it automatically to a power of two if non-power
// of two capacity is provided.
func CreatePortalRing(capacity uint32) *PortalRing {
	if capacity < 2 {
		capacity = 2
	}
	iCap := RoundPOW2_Uint32(capacity)
	if iCap < capacity {
		Log.Panic("Integer overflow when computing ring capacity (before rounding up to power of two: %d). Specified capacity clearly exceeds the possible maximum\n",
			capacity)
	}
	if iCap > MAX_RING_CAPACITY {
		Log.Panic("Exceeds maximum ring capacity: %d (%d rounded up to power of two)\n",
			iCap, capacity)
	}
	return &PortalRing{
		capacity: iCap,
		buf:      make([]*Portal, iCap),
	}
}

func RoundPOW2_Uint32(x uint32) uint32 {
	if x <= 2 {
		return x
	}

	x--

	for tmp := x >> 1; tmp != 0; tmp >>= 1 {
		x |= tmp
	}

	return x + 1
}

func (r *PortalRing) mask(val uint32) uint32 {
	return val & (r.capacity - 1)
}

func (r *PortalRing) Enqueue(item *Portal) {
	if r.Full() {
		r.grow()
	}
	r.buf[r.mask(r.write)] = item
	r.write++
}

// Front is the portal Dequeue would return, nil if the ring is empty
func (r *PortalRing) Front() *Portal {
	if r.Empty() {
		return nil
	}
	return r.buf[r.mask(r.read)]
}

// Dequeue on empty ring returns nil
func (r *PortalRing) Dequeue() *Portal {
	if r.Empty() {
		return nil
	}
	idx := r.mask(r.read)
	res := r.buf[idx]
	r.buf[idx] = nil
	r.read++
	return res
}

func (r *PortalRing) Empty() bool {
	return r.read == r.write
}

func (r *PortalRing) Size() uint32 {
	return r.write - r.read
}

func (r *PortalRing) Full() bool {
	return r.Size() == r.capacity
}

// grow doubles capacity, preserving the order of queued portals
func (r *PortalRing) grow() {
	if r.capacity >= MAX_RING_CAPACITY {
		Log.Panic("Exceeds maximum ring capacity: %d\n", r.capacity)
	}
	nbuf := make([]*Portal, r.capacity*2)
	size := r.Size()
	for i := uint32(0); i < size; i++ {
		nbuf[i] = r.buf[r.mask(r.read+i)]
	}
	r.buf = nbuf
	r.capacity *= 2
	r.read = 0
	r.write = size
}
