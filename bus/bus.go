/*
 * rv32diff - Address bus: ordered regions, ordered MMIO devices, D-cache
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

// Package bus implements the guest address space: an ordered list of
// backing memory regions, an ordered list of MMIO device mappings, a
// software D-cache for the hot load/store path, and the fault taxonomy
// every fallible access reports through.
package bus

import (
	"sort"

	"github.com/rcornwell/rv32diff/device"
	"github.com/rcornwell/rv32diff/mem"
)

// DefaultDcacheSize is used when a session config does not override it.
const DefaultDcacheSize = 256

type deviceMapping struct {
	base uint32
	dev  device.Device
}

// Bus is the guest's address space. It is not safe for concurrent use;
// the simulator and the difftest coordinator each own one Bus and drive
// it from a single goroutine.
type Bus struct {
	regions []*mem.Region
	devices []deviceMapping
	dcache  *dcache
	lastHit int // index into regions, -1 if none yet
	mmioHit bool
}

// New constructs an empty Bus with the given D-cache line count (must
// be a power of two).
func New(dcacheSize int) *Bus {
	return &Bus{
		dcache:  newDcache(dcacheSize),
		lastHit: -1,
	}
}

// AddRegion registers a backing memory region. Regions must not
// overlap one another or any mapped device; AddRegion panics on
// overlap, the same "bad layout is a programmer error" policy
// mem.NewRegion itself uses.
func (b *Bus) AddRegion(r *mem.Region) {
	for _, other := range b.regions {
		if rangesOverlap(r.Start, r.End, other.Start, other.End) {
			panic("bus: region " + r.Name + " overlaps region " + other.Name)
		}
	}
	for _, d := range b.devices {
		if rangesOverlap(r.Start, r.End, d.base, d.base+d.dev.Size()) {
			panic("bus: region " + r.Name + " overlaps device mapping")
		}
	}
	b.regions = append(b.regions, r)
	sort.Slice(b.regions, func(i, j int) bool { return b.regions[i].Start < b.regions[j].Start })
	b.lastHit = -1
}

// AddDevice maps dev's register window starting at base. MMIO ranges
// are never cached by the D-cache: every access to a
// mapped device goes through Read/Write, not the region fast path.
func (b *Bus) AddDevice(base uint32, dev device.Device) {
	end := base + dev.Size()
	for _, r := range b.regions {
		if rangesOverlap(base, end, r.Start, r.End) {
			panic("bus: device overlaps region " + r.Name)
		}
	}
	for _, d := range b.devices {
		if rangesOverlap(base, end, d.base, d.base+d.dev.Size()) {
			panic("bus: device overlaps another device mapping")
		}
	}
	b.devices = append(b.devices, deviceMapping{base: base, dev: dev})
	sort.Slice(b.devices, func(i, j int) bool { return b.devices[i].base < b.devices[j].base })
}

func rangesOverlap(aStart, aEnd, bStart, bEnd uint32) bool {
	return aStart < bEnd && bStart < aEnd
}

// IsDevice reports whether addr falls within a mapped device window.
// The difftest coordinator uses this to decide whether a step must be
// treated as an MMIO "skip" rather than a compared step.
func (b *Bus) IsDevice(addr uint32) bool {
	_, ok := b.findDevice(addr)
	return ok
}

// MMIOTouched reports whether any successful device access has
// happened since the flag was last cleared, and clears it. This is the "per-step MMIO
// side channel" the difftest coordinator polls after each DUT step
// instead of threading a bool through every call site.
func (b *Bus) MMIOTouched() bool {
	v := b.mmioHit
	b.mmioHit = false
	return v
}

// writeRejection classifies a device's write rejection: a device that
// implements rejectsWrite and reports isIO gets TagDeviceIO; everything else
// falls back to TagUnsupportedWidth, the width-level rejection.
func (b *Bus) writeRejection(addr uint32, d *deviceMapping, w device.Width) *Fault {
	if rw, ok := d.dev.(rejectsWrite); ok {
		if detail, isIO := rw.RejectsWrite(addr-d.base, w); isIO {
			return deviceIO(addr, d.dev.Key(), detail)
		}
	}
	return unsupportedWidth(addr, d.dev.Key(), w)
}

func (b *Bus) findDevice(addr uint32) (*deviceMapping, bool) {
	for i := range b.devices {
		d := &b.devices[i]
		if addr >= d.base && addr < d.base+d.dev.Size() {
			return d, true
		}
	}
	return nil, false
}

// findRegion locates the region containing addr, trying the
// last-hit region first.
func (b *Bus) findRegion(addr uint32) (*mem.Region, bool) {
	if b.lastHit >= 0 && b.lastHit < len(b.regions) {
		r := b.regions[b.lastHit]
		if r.Contains(addr) {
			return r, true
		}
	}
	for i, r := range b.regions {
		if r.Contains(addr) {
			b.lastHit = i
			return r, true
		}
	}
	return nil, false
}

// FlushDcache invalidates every D-cache line. cpu.Simulator.FlushState
// calls it after a command-driven write of registers or memory and
// after a full difftest resync; WriteBytes flushes on its own.
func (b *Bus) FlushDcache() {
	b.dcache.flush()
}

// resolve finds the region and region-relative base for addr's page,
// consulting the D-cache first and filling it on a miss. It does not
// itself bounds-check the individual access against the region: wider
// accesses that cross a page's tag but stay in-region are still valid,
// since the D-cache's granularity is an implementation cache line, not
// the definition of region membership.
func (b *Bus) resolve(addr uint32) (*mem.Region, bool) {
	if r, _, hit := b.dcache.lookup(addr); hit {
		return r, true
	}
	r, ok := b.findRegion(addr)
	if !ok {
		return nil, false
	}
	b.dcache.fill(addr, r, r.Start)
	return r, true
}

// Read8 through Read128 and the matching Write* methods are the bus's
// public access surface. The region fast path (one D-cache probe)
// runs first; MMIO dispatch happens only on a region miss, which is
// why device addresses are never allowed into the D-cache. Cross-
// region accesses -- a width-N access whose bytes span two regions or
// a region and a device -- are rejected as Unmapped: the bus does not
// stitch together partial reads across mappings.

func (b *Bus) Read8(addr uint32) (uint8, *Fault) {
	if r, ok := b.resolve(addr); ok {
		if v, ok := r.Read8(addr); ok {
			return v, nil
		}
		return 0, unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		v, ok := d.dev.Read(addr-d.base, device.Width8)
		if !ok {
			return 0, unsupportedWidth(addr, d.dev.Key(), device.Width8)
		}
		b.mmioHit = true
		return uint8(v), nil
	}
	return 0, unmapped(addr)
}

func (b *Bus) Write8(addr uint32, v uint8) *Fault {
	if r, ok := b.resolve(addr); ok {
		if r.Write8(addr, v) {
			return nil
		}
		return unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		if !d.dev.Write(addr-d.base, device.Width8, uint64(v)) {
			return b.writeRejection(addr, d, device.Width8)
		}
		b.mmioHit = true
		return nil
	}
	return unmapped(addr)
}

func (b *Bus) Read16(addr uint32) (uint16, *Fault) {
	if r, ok := b.resolve(addr); ok {
		if v, ok := r.Read16(addr); ok {
			return v, nil
		}
		return 0, unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		v, ok := d.dev.Read(addr-d.base, device.Width16)
		if !ok {
			return 0, unsupportedWidth(addr, d.dev.Key(), device.Width16)
		}
		b.mmioHit = true
		return uint16(v), nil
	}
	return 0, unmapped(addr)
}

func (b *Bus) Write16(addr uint32, v uint16) *Fault {
	if r, ok := b.resolve(addr); ok {
		if r.Write16(addr, v) {
			return nil
		}
		return unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		if !d.dev.Write(addr-d.base, device.Width16, uint64(v)) {
			return b.writeRejection(addr, d, device.Width16)
		}
		b.mmioHit = true
		return nil
	}
	return unmapped(addr)
}

func (b *Bus) Read32(addr uint32) (uint32, *Fault) {
	if r, ok := b.resolve(addr); ok {
		if v, ok := r.Read32(addr); ok {
			return v, nil
		}
		return 0, unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		v, ok := d.dev.Read(addr-d.base, device.Width32)
		if !ok {
			return 0, unsupportedWidth(addr, d.dev.Key(), device.Width32)
		}
		b.mmioHit = true
		return uint32(v), nil
	}
	return 0, unmapped(addr)
}

func (b *Bus) Write32(addr uint32, v uint32) *Fault {
	if r, ok := b.resolve(addr); ok {
		if r.Write32(addr, v) {
			return nil
		}
		return unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		if !d.dev.Write(addr-d.base, device.Width32, uint64(v)) {
			return b.writeRejection(addr, d, device.Width32)
		}
		b.mmioHit = true
		return nil
	}
	return unmapped(addr)
}

func (b *Bus) Read64(addr uint32) (uint64, *Fault) {
	if r, ok := b.resolve(addr); ok {
		if v, ok := r.Read64(addr); ok {
			return v, nil
		}
		return 0, unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		v, ok := d.dev.Read(addr-d.base, device.Width64)
		if !ok {
			return 0, unsupportedWidth(addr, d.dev.Key(), device.Width64)
		}
		b.mmioHit = true
		return v, nil
	}
	return 0, unmapped(addr)
}

func (b *Bus) Write64(addr uint32, v uint64) *Fault {
	if r, ok := b.resolve(addr); ok {
		if r.Write64(addr, v) {
			return nil
		}
		return unmapped(addr)
	}
	if d, ok := b.findDevice(addr); ok {
		if !d.dev.Write(addr-d.base, device.Width64, v) {
			return b.writeRejection(addr, d, device.Width64)
		}
		b.mmioHit = true
		return nil
	}
	return unmapped(addr)
}

// Read128 and Write128 never route to a device: no device in this
// module implements a 128-bit register window, so any such address
// simply misses to Unmapped via the region path.
func (b *Bus) Read128(addr uint32) (lo, hi uint64, fault *Fault) {
	r, ok := b.resolve(addr)
	if !ok {
		return 0, 0, unmapped(addr)
	}
	lo, hi, ok = r.Read128(addr)
	if !ok {
		return 0, 0, unmapped(addr)
	}
	return lo, hi, nil
}

func (b *Bus) Write128(addr uint32, lo, hi uint64) *Fault {
	r, ok := b.resolve(addr)
	if !ok || !r.Write128(addr, lo, hi) {
		return unmapped(addr)
	}
	return nil
}

// ReadBytes and WriteBytes serve bulk transfers (ELF segment load,
// difftest memory resync) and never consult the D-cache or devices;
// they require the whole span to lie in one region.
func (b *Bus) ReadBytes(addr uint32, out []byte) *Fault {
	r, ok := b.findRegion(addr)
	if !ok || !r.ReadBytes(addr, out) {
		return unmapped(addr)
	}
	return nil
}

func (b *Bus) WriteBytes(addr uint32, in []byte) *Fault {
	r, ok := b.findRegion(addr)
	if !ok || !r.WriteBytes(addr, in) {
		return unmapped(addr)
	}
	b.dcache.flush()
	return nil
}

// Regions returns the bus's regions in ascending address order, for
// the difftest coordinator's bulk-copy-to-reference step.
func (b *Bus) Regions() []*mem.Region {
	out := make([]*mem.Region, len(b.regions))
	copy(out, b.regions)
	return out
}
