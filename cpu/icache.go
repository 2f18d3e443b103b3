/*
 * rv32diff - Instruction cache: direct-mapped, keyed by PC
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

package cpu

// DefaultICacheSize is used when a session config does not override it.
const DefaultICacheSize = 1 << 16

// icacheInvalidPC is the sentinel for an empty slot: ALL_ONES, a PC no
// fetch ever uses.
const icacheInvalidPC = ^uint32(0)

// icacheEntry is one direct-mapped line: the PC it was fetched for and
// its decoded form. An empty slot has PC == icacheInvalidPC.
type icacheEntry struct {
	pc      uint32
	decoded DecodedInstruction
}

// ICache is the DUT's instruction cache: direct-mapped, power-of-two
// sized, indexed by the low bits of the PC. A hit replaces a fetch
// from the bus plus a full decode with one array index and a PC
// comparison.
type ICache struct {
	entries []icacheEntry
	mask    uint32
}

// NewICache constructs an empty I-cache with the given line count,
// which must be a power of two.
func NewICache(size int) *ICache {
	if size <= 0 || size&(size-1) != 0 {
		panic("cpu: icache size must be a power of 2")
	}
	c := &ICache{entries: make([]icacheEntry, size), mask: uint32(size - 1)}
	c.Flush()
	return c
}

func (c *ICache) index(pc uint32) uint32 {
	return pc & c.mask
}

// Lookup returns the decoded instruction cached for pc, if any.
func (c *ICache) Lookup(pc uint32) (DecodedInstruction, bool) {
	e := &c.entries[c.index(pc)]
	if e.pc == pc {
		return e.decoded, true
	}
	return DecodedInstruction{}, false
}

// Fill installs the decoded form of the instruction at pc, overwriting
// whatever previously occupied that line.
func (c *ICache) Fill(pc uint32, decoded DecodedInstruction) {
	e := &c.entries[c.index(pc)]
	e.pc = pc
	e.decoded = decoded
}

// Flush invalidates every line. Called whenever fetched instructions
// could be stale: a coordinator-initiated state write, a register or
// memory write via the command interface, or fence.i.
func (c *ICache) Flush() {
	for i := range c.entries {
		c.entries[i].pc = icacheInvalidPC
	}
}
