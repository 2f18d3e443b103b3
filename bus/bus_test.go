/*
 * rv32diff - Bus tests
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

import (
	"testing"

	"github.com/rcornwell/rv32diff/device"
	"github.com/rcornwell/rv32diff/mem"
)

func newTestBus() *Bus {
	b := New(DefaultDcacheSize)
	b.AddRegion(mem.NewRegion("ram", 0x8000_0000, 0x8000_0000+mem.PageSize*4))
	return b
}

// TestRegionRoundTrip covers testable property 1: every in-range
// write is visible to a subsequent read of the same width and address.
func TestRegionRoundTrip(t *testing.T) {
	b := newTestBus()
	addr := uint32(0x8000_1004)

	if f := b.Write32(addr, 0xdeadbeef); f != nil {
		t.Fatalf("Write32: %v", f)
	}
	got, f := b.Read32(addr)
	if f != nil {
		t.Fatalf("Read32: %v", f)
	}
	if got != 0xdeadbeef {
		t.Errorf("Read32 = %#x, want 0xdeadbeef", got)
	}
}

// TestUnmappedAccess covers testable property 2: an access outside
// every region and device reports Unmapped.
func TestUnmappedAccess(t *testing.T) {
	b := newTestBus()
	if _, f := b.Read32(0x1000); f == nil || f.Tag != TagUnmapped {
		t.Fatalf("Read32 of unmapped addr = %v, want Unmapped", f)
	}
}

// TestCrossRegionAccessRejected covers the "cross-region accesses are
// not supported" rule: a width-4 access whose last byte
// falls past a region's End is rejected, even though the address
// itself is in-region.
func TestCrossRegionAccessRejected(t *testing.T) {
	b := New(DefaultDcacheSize)
	b.AddRegion(mem.NewRegion("low", 0x1000, 0x1000+mem.PageSize))
	last := uint32(0x1000 + mem.PageSize - 2)
	if _, f := b.Read32(last); f == nil {
		t.Error("Read32 spanning past region End was accepted, want Unmapped")
	}
}

// TestDcacheCoherenceUnderThrashing covers testable property 5 /
// scenario S5: repeatedly touching more distinct pages than the
// D-cache has lines must still return correct data -- thrashing must
// never corrupt results, only evict lines.
func TestDcacheCoherenceUnderThrashing(t *testing.T) {
	b := New(4) // tiny cache: 4 lines
	base := uint32(0x8000_0000)
	span := uint32(mem.PageSize * 4096)
	b.AddRegion(mem.NewRegion("ram", base, base+span))

	const pages = 64
	for i := 0; i < pages; i++ {
		addr := base + uint32(i)*(1<<PageShift)
		if f := b.Write32(addr, uint32(i)); f != nil {
			t.Fatalf("Write32 page %d: %v", i, f)
		}
	}
	for i := 0; i < pages; i++ {
		addr := base + uint32(i)*(1<<PageShift)
		got, f := b.Read32(addr)
		if f != nil {
			t.Fatalf("Read32 page %d: %v", i, f)
		}
		if got != uint32(i) {
			t.Errorf("page %d = %d, want %d", i, got, i)
		}
	}
}

// TestFlushDcacheThenReadStillCorrect covers testable property 7:
// flushing the D-cache never changes the value an address reads back
// as, only how the lookup is satisfied.
func TestFlushDcacheThenReadStillCorrect(t *testing.T) {
	b := newTestBus()
	addr := uint32(0x8000_2000)
	b.Write32(addr, 42)
	b.Read32(addr) // warms the D-cache line
	b.FlushDcache()
	got, f := b.Read32(addr)
	if f != nil || got != 42 {
		t.Errorf("Read32 after flush = %v, %v, want 42, nil", got, f)
	}
}

type stubDevice struct {
	key   string
	size  uint32
	reads int
	last  uint64
}

func (s *stubDevice) Key() string  { return s.key }
func (s *stubDevice) Size() uint32 { return s.size }
func (s *stubDevice) Read(offset uint32, width device.Width) (uint64, bool) {
	s.reads++
	return s.last, true
}
func (s *stubDevice) Write(offset uint32, width device.Width, value uint64) bool {
	s.last = value
	return true
}

// TestDeviceAccessNotCached confirms MMIO addresses bypass the D-cache
// entirely and that a write to a device sets the per-step
// MMIO-touched flag the difftest coordinator polls.
func TestDeviceAccessNotCached(t *testing.T) {
	b := New(DefaultDcacheSize)
	dev := &stubDevice{key: "stub", size: 4}
	b.AddDevice(0x1000_0000, dev)

	if f := b.Write32(0x1000_0000, 7); f != nil {
		t.Fatalf("Write32: %v", f)
	}
	if _, _, hit := b.dcache.lookup(0x1000_0000); hit {
		t.Error("device address was installed in the D-cache")
	}
	if !b.MMIOTouched() {
		t.Error("MMIOTouched() = false after device write, want true")
	}
	if b.MMIOTouched() {
		t.Error("MMIOTouched() did not clear after read")
	}
	if dev.last != 7 {
		t.Errorf("device saw %d, want 7", dev.last)
	}
}

func TestIsDevice(t *testing.T) {
	b := New(DefaultDcacheSize)
	dev := &stubDevice{key: "stub", size: 16}
	b.AddDevice(0x2000_0000, dev)
	if !b.IsDevice(0x2000_0004) {
		t.Error("IsDevice in-window = false, want true")
	}
	if b.IsDevice(0x2000_0020) {
		t.Error("IsDevice out-of-window = true, want false")
	}
}

type readOnlyFieldDevice struct {
	stubDevice
}

func (s *readOnlyFieldDevice) Write(offset uint32, width device.Width, value uint64) bool {
	if offset == 0 {
		return false
	}
	return s.stubDevice.Write(offset, width, value)
}

func (s *readOnlyFieldDevice) RejectsWrite(offset uint32, width device.Width) (string, bool) {
	if offset == 0 {
		return "offset 0 is read-only", true
	}
	return "", false
}

// TestDeviceWriteRejectionReportsDeviceIO confirms a device that
// implements rejectsWrite gets TagDeviceIO for a field-level rejection
// rather than the generic TagUnsupportedWidth every other device
// rejection produces.
func TestDeviceWriteRejectionReportsDeviceIO(t *testing.T) {
	b := New(DefaultDcacheSize)
	dev := &readOnlyFieldDevice{stubDevice{key: "readonly", size: 8}}
	b.AddDevice(0x3000_0000, dev)

	if f := b.Write32(0x3000_0000, 1); f == nil || f.Tag != TagDeviceIO {
		t.Fatalf("Write32 to read-only field = %v, want TagDeviceIO", f)
	}
	if f := b.Write32(0x3000_0004, 1); f != nil {
		t.Fatalf("Write32 to writable offset: %v", f)
	}
}

func TestOverlappingRegionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("overlapping AddRegion did not panic")
		}
	}()
	b := New(DefaultDcacheSize)
	b.AddRegion(mem.NewRegion("a", 0x1000, 0x1000+mem.PageSize*2))
	b.AddRegion(mem.NewRegion("b", 0x1000+mem.PageSize, 0x1000+mem.PageSize*3))
}

func TestBulkWriteBytesFlushesDcache(t *testing.T) {
	b := newTestBus()
	addr := uint32(0x8000_3000)
	b.Write32(addr, 1)
	b.Read32(addr) // warm

	if f := b.WriteBytes(addr, []byte{2, 0, 0, 0}); f != nil {
		t.Fatalf("WriteBytes: %v", f)
	}
	got, f := b.Read32(addr)
	if f != nil || got != 2 {
		t.Errorf("Read32 after bulk write = %v, %v, want 2, nil", got, f)
	}
}
