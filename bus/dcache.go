/*
 * rv32diff - Addend-style software D-cache (page-grained TLB)
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

package bus

import "github.com/rcornwell/rv32diff/mem"

// PageShift is the D-cache's page granularity: 256 bytes. This is
// smaller than a real MMU page so that tight loops touching a handful
// of distinct 256-byte lines thrash less than they would against a
// 4KB-page TLB.
const PageShift = 8

// invalidTag is the sentinel for an empty slot: no guest page number
// can equal it, since a page number is always the top 24 bits of a
// 32-bit address.
const invalidTag = ^uint32(0)

// dcacheEntry is one line: a page tag plus the region that backs it
// and the region's Start, which plays the role of the addend in the
// classic software-TLB shape (host_ptr = addr + addend, here
// realized by the region's own accessors indexing its backing slice
// at addr-Start rather than by raw pointer arithmetic -- see
// mem.Region.Bytes doc comment for why). On hit,
// one array index plus one subtraction replaces the region scan.
type dcacheEntry struct {
	tag    uint32
	region *mem.Region
	base   uint32
}

// dcache is a direct-mapped, power-of-two-sized addend TLB.
type dcache struct {
	entries []dcacheEntry
	mask    uint32
}

func newDcache(size int) *dcache {
	if size <= 0 || size&(size-1) != 0 {
		panic("bus: dcache size must be a power of 2")
	}
	d := &dcache{entries: make([]dcacheEntry, size), mask: uint32(size - 1)}
	d.flush()
	return d
}

func (d *dcache) flush() {
	for i := range d.entries {
		d.entries[i].tag = invalidTag
		d.entries[i].region = nil
	}
}

func (d *dcache) index(addr uint32) uint32 {
	return (addr >> PageShift) & d.mask
}

// lookup returns the region backing addr's page if the tag matches.
func (d *dcache) lookup(addr uint32) (region *mem.Region, base uint32, hit bool) {
	e := &d.entries[d.index(addr)]
	if e.tag == addr>>PageShift {
		return e.region, e.base, true
	}
	return nil, 0, false
}

// fill installs (or overwrites) the entry for addr's page.
func (d *dcache) fill(addr uint32, region *mem.Region, base uint32) {
	e := &d.entries[d.index(addr)]
	e.tag = addr >> PageShift
	e.region = region
	e.base = base
}
