/*
 * rv32diff - I-cache tests
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

import "testing"

func TestICacheMissThenHit(t *testing.T) {
	c := NewICache(16)
	if _, hit := c.Lookup(0x100); hit {
		t.Fatal("Lookup on empty cache reported a hit")
	}
	want := DecodedInstruction{Op: OpAddi, Rd: 1, Imm: 5}
	c.Fill(0x100, want)
	got, hit := c.Lookup(0x100)
	if !hit {
		t.Fatal("Lookup after Fill reported a miss")
	}
	if got != want {
		t.Errorf("Lookup = %+v, want %+v", got, want)
	}
}

func TestICacheAliasEviction(t *testing.T) {
	c := NewICache(16)
	c.Fill(0x100, DecodedInstruction{Op: OpAddi})
	// 0x100 and 0x100+16*4 alias the same line.
	alias := uint32(0x100 + 16*4)
	c.Fill(alias, DecodedInstruction{Op: OpSub})

	if _, hit := c.Lookup(0x100); hit {
		t.Error("stale entry at 0x100 still hit after aliasing eviction")
	}
	got, hit := c.Lookup(alias)
	if !hit || got.Op != OpSub {
		t.Errorf("Lookup(alias) = %+v, %v, want OpSub, true", got, hit)
	}
}

func TestICacheFlushInvalidatesEverything(t *testing.T) {
	c := NewICache(16)
	c.Fill(0x200, DecodedInstruction{Op: OpAdd})
	c.Flush()
	if _, hit := c.Lookup(0x200); hit {
		t.Error("Lookup hit after Flush, want miss")
	}
}

func TestNewICachePanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewICache(3) did not panic")
		}
	}()
	NewICache(3)
}
