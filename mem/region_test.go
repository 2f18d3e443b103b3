/*
 * rv32diff - Memory region tests
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

package mem

import "testing"

func TestNewRegionZeroFilled(t *testing.T) {
	r := NewRegion("ram", 0x1000, 0x2000)
	for addr := r.Start; addr < r.End; addr += 256 {
		v, ok := r.Read32(addr)
		if !ok {
			t.Fatalf("Read32(%#x) not ok", addr)
		}
		if v != 0 {
			t.Errorf("Read32(%#x) = %#x, want 0", addr, v)
		}
	}
}

func TestNewRegionBadSpecPanics(t *testing.T) {
	cases := []struct {
		name        string
		start, end  uint32
		description string
	}{
		{"end<=start", 0x2000, 0x1000, "end before start"},
		{"unaligned start", 0x1001, 0x2000, "start not page aligned"},
		{"unaligned end", 0x1000, 0x2001, "end not page aligned"},
		{"too small", 0x1000, 0x1000 + 256, "less than one page"},
	}
	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: expected panic for %s", c.name, c.description)
				}
			}()
			NewRegion(c.name, c.start, c.end)
		}()
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	r := NewRegion("ram", 0x80000000, 0x80001000)

	for i := range 256 {
		addr := r.Start + uint32(i)
		r.Write8(addr, uint8(i))
	}
	for i := range 256 {
		addr := r.Start + uint32(i)
		v, ok := r.Read8(addr)
		if !ok || v != uint8(i) {
			t.Errorf("Read8(%#x) = %v, %v, want %d, true", addr, v, ok, uint8(i))
		}
	}

	if !r.Write32(r.Start+0x100, 0xdeadbeef) {
		t.Fatal("Write32 rejected an in-range access")
	}
	if v, ok := r.Read32(r.Start + 0x100); !ok || v != 0xdeadbeef {
		t.Errorf("Read32 after Write32 = %#x, %v, want 0xdeadbeef, true", v, ok)
	}

	if !r.Write64(r.Start+0x200, 0x0102030405060708) {
		t.Fatal("Write64 rejected an in-range access")
	}
	if v, ok := r.Read64(r.Start + 0x200); !ok || v != 0x0102030405060708 {
		t.Errorf("Read64 after Write64 = %#x, %v", v, ok)
	}

	if !r.Write128(r.Start+0x300, 0x1111111111111111, 0x2222222222222222) {
		t.Fatal("Write128 rejected an in-range access")
	}
	if lo, hi, ok := r.Read128(r.Start + 0x300); !ok || lo != 0x1111111111111111 || hi != 0x2222222222222222 {
		t.Errorf("Read128 after Write128 = %#x %#x %v", lo, hi, ok)
	}
}

func TestUnalignedAccessWithinRegion(t *testing.T) {
	r := NewRegion("ram", 0x1000, 0x2000)
	if !r.Write32(r.Start+1, 0xcafef00d) {
		t.Fatal("unaligned Write32 rejected")
	}
	if v, ok := r.Read32(r.Start + 1); !ok || v != 0xcafef00d {
		t.Errorf("unaligned Read32 = %#x, %v, want 0xcafef00d, true", v, ok)
	}
}

func TestBoundaryLastByte(t *testing.T) {
	r := NewRegion("ram", 0x1000, 0x2000)
	last := r.End - 1
	if !r.Write8(last, 0x42) {
		t.Fatal("Write8 at end-1 rejected")
	}
	if v, ok := r.Read8(last); !ok || v != 0x42 {
		t.Errorf("Read8 at end-1 = %#x, %v", v, ok)
	}
	if r.Write8(r.End, 0) {
		t.Error("Write8 at end accepted, want rejected")
	}
	if r.Write32(last, 0) {
		t.Error("Write32 at end-1 accepted (would straddle end), want rejected")
	}
}

func TestOutOfRangeRejected(t *testing.T) {
	r := NewRegion("ram", 0x80000000, 0x80001000)
	if _, ok := r.Read32(r.Start - 4); ok {
		t.Error("Read32 before region start accepted")
	}
	if _, ok := r.Read32(r.End); ok {
		t.Error("Read32 at region end accepted")
	}
	if r.Write32(r.End-2, 0) {
		t.Error("Write32 straddling region end accepted")
	}
}

func TestDistinctRegionsDoNotAlias(t *testing.T) {
	r1 := NewRegion("ram1", 0x1000, 0x2000)
	r2 := NewRegion("ram2", 0x3000, 0x4000)

	r1.Write32(r1.Start, 0x11111111)
	r2.Write32(r2.Start, 0x22222222)

	if v, _ := r1.Read32(r1.Start); v != 0x11111111 {
		t.Errorf("r1 corrupted by write to r2: got %#x", v)
	}
	if v, _ := r2.Read32(r2.Start); v != 0x22222222 {
		t.Errorf("r2 corrupted by write to r1: got %#x", v)
	}
}

func TestRawRegion(t *testing.T) {
	r := NewRegion("ram", 0x1000, 0x2000)
	r.Write32(r.Start, 0xaabbccdd)

	base, host, size := r.RawRegion()
	if base != r.Start {
		t.Errorf("RawRegion base = %#x, want %#x", base, r.Start)
	}
	if size != r.End-r.Start {
		t.Errorf("RawRegion size = %d, want %d", size, r.End-r.Start)
	}
	if len(host) != int(size) {
		t.Errorf("RawRegion host len = %d, want %d", len(host), size)
	}
	if host[0] != 0xdd || host[1] != 0xcc || host[2] != 0xbb || host[3] != 0xaa {
		t.Errorf("RawRegion host bytes = %x, want little-endian 0xaabbccdd", host[:4])
	}
}
