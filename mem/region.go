/*
 * rv32diff - Memory region
 *
 * Copyright 2026, rv32diff contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package mem implements the bus-backed memory region: a contiguous,
// zero-filled, little-endian byte buffer for one mapped guest range.
package mem

import (
	"encoding/binary"
	"fmt"
)

// PageSize is the required alignment and minimum size of a region.
const PageSize = 4096

// TailPadding is extra, never-addressable space appended to every
// region's buffer so that a safe implementation may always perform a
// fixed-width 16-byte access at the last in-range address without a
// bounds fault. It does not widen the public contract: addresses at
// or beyond end are still rejected by every exported accessor.
const TailPadding = 16

// Region owns a contiguous, zero-filled byte buffer backing the
// half-open guest range [Start, End). Start and End are page-aligned;
// End-Start is at least one full page.
type Region struct {
	Name  string
	Start uint32
	End   uint32
	data  []byte
}

// NewRegion allocates a zero-filled region covering [start, end).
// It panics on a malformed range; overlap with other regions is
// checked when the region is added to a bus (see bus.Bus.AddRegion),
// which also panics. A bad memory layout is a programmer error, not a
// runtime fault.
func NewRegion(name string, start, end uint32) *Region {
	if end <= start {
		panic(fmt.Sprintf("mem: region %q has end <= start (%#x <= %#x)", name, end, start))
	}
	if start%PageSize != 0 || end%PageSize != 0 {
		panic(fmt.Sprintf("mem: region %q is not page-aligned [%#x, %#x)", name, start, end))
	}
	if end-start < PageSize {
		panic(fmt.Sprintf("mem: region %q is smaller than one page", name))
	}
	return &Region{
		Name:  name,
		Start: start,
		End:   end,
		data:  make([]byte, uint64(end-start)+TailPadding),
	}
}

// Contains reports whether addr lies in [Start, End).
func (r *Region) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

// fits reports whether an access of size bytes at addr lies entirely
// in [Start, End); cross-region accesses are rejected by the bus, but
// a region also refuses to serve an access that would run past its
// own end.
func (r *Region) fits(addr uint32, size uint32) bool {
	if addr < r.Start || addr >= r.End {
		return false
	}
	return uint64(addr-r.Start)+uint64(size) <= uint64(r.End-r.Start)
}

func (r *Region) off(addr uint32) uint32 {
	return addr - r.Start
}

// Read8 reads one byte at addr.
func (r *Region) Read8(addr uint32) (uint8, bool) {
	if !r.fits(addr, 1) {
		return 0, false
	}
	return r.data[r.off(addr)], true
}

// Write8 writes one byte at addr.
func (r *Region) Write8(addr uint32, v uint8) bool {
	if !r.fits(addr, 1) {
		return false
	}
	r.data[r.off(addr)] = v
	return true
}

// Read16 reads a little-endian half-word at addr. Unaligned addresses
// are permitted; the implementation does not require natural alignment.
func (r *Region) Read16(addr uint32) (uint16, bool) {
	if !r.fits(addr, 2) {
		return 0, false
	}
	o := r.off(addr)
	return binary.LittleEndian.Uint16(r.data[o : o+2]), true
}

// Write16 writes a little-endian half-word at addr.
func (r *Region) Write16(addr uint32, v uint16) bool {
	if !r.fits(addr, 2) {
		return false
	}
	o := r.off(addr)
	binary.LittleEndian.PutUint16(r.data[o:o+2], v)
	return true
}

// Read32 reads a little-endian word at addr.
func (r *Region) Read32(addr uint32) (uint32, bool) {
	if !r.fits(addr, 4) {
		return 0, false
	}
	o := r.off(addr)
	return binary.LittleEndian.Uint32(r.data[o : o+4]), true
}

// Write32 writes a little-endian word at addr.
func (r *Region) Write32(addr uint32, v uint32) bool {
	if !r.fits(addr, 4) {
		return false
	}
	o := r.off(addr)
	binary.LittleEndian.PutUint32(r.data[o:o+4], v)
	return true
}

// Read64 reads a little-endian double-word at addr.
func (r *Region) Read64(addr uint32) (uint64, bool) {
	if !r.fits(addr, 8) {
		return 0, false
	}
	o := r.off(addr)
	return binary.LittleEndian.Uint64(r.data[o : o+8]), true
}

// Write64 writes a little-endian double-word at addr.
func (r *Region) Write64(addr uint32, v uint64) bool {
	if !r.fits(addr, 8) {
		return false
	}
	o := r.off(addr)
	binary.LittleEndian.PutUint64(r.data[o:o+8], v)
	return true
}

// Read128 reads 16 bytes at addr as a little-endian pair of u64 words
// (lo, hi). There is no architectural 128-bit GPR in RV32I/M; this
// exists because the bus and device contract cover widths up to 128
// bits for forward compatibility with wider vector/FP loads that this
// core does not execute.
func (r *Region) Read128(addr uint32) (lo, hi uint64, ok bool) {
	if !r.fits(addr, 16) {
		return 0, 0, false
	}
	o := r.off(addr)
	return binary.LittleEndian.Uint64(r.data[o : o+8]), binary.LittleEndian.Uint64(r.data[o+8 : o+16]), true
}

// Write128 writes 16 bytes at addr from a little-endian pair of u64 words.
func (r *Region) Write128(addr uint32, lo, hi uint64) bool {
	if !r.fits(addr, 16) {
		return false
	}
	o := r.off(addr)
	binary.LittleEndian.PutUint64(r.data[o:o+8], lo)
	binary.LittleEndian.PutUint64(r.data[o+8:o+16], hi)
	return true
}

// ReadBytes copies len(out) bytes starting at addr into out.
func (r *Region) ReadBytes(addr uint32, out []byte) bool {
	if !r.fits(addr, uint32(len(out))) {
		return false
	}
	o := r.off(addr)
	copy(out, r.data[o:int(o)+len(out)])
	return true
}

// WriteBytes copies in into the region starting at addr.
func (r *Region) WriteBytes(addr uint32, in []byte) bool {
	if !r.fits(addr, uint32(len(in))) {
		return false
	}
	o := r.off(addr)
	copy(r.data[o:int(o)+len(in)], in)
	return true
}

// RawRegion exposes (guestBase, hostBytes, size) for the difftest
// coordinator's bulk-copy to a reference simulator. The returned
// slice aliases the region's backing array; callers must not retain it past the next mutation
// of the region.
func (r *Region) RawRegion() (guestBase uint32, host []byte, size uint32) {
	size = r.End - r.Start
	return r.Start, r.data[:size], size
}

// Bytes exposes the region's raw backing slice, indexed from 0 (not
// from Start). The bus's D-cache holds a reference to the owning
// Region plus its Start as the "addend" base, rather than a raw host
// pointer: indexing through a Go slice is memory-safe and the bounds
// check it implies is a few cycles, not the hazard that unsafe
// pointer arithmetic across GC safepoints would be. Callers must not
// retain the slice past the next mutation of the region.
func (r *Region) Bytes() []byte {
	return r.data
}
