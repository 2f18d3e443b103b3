/*
 * rv32diff - Device protocol
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

// Package device implements the narrow MMIO contract every
// memory-mapped peripheral presents to the bus: read/write at byte,
// half, word, double, and 128-bit widths, keyed by an offset local to
// the device's base address.
package device

import "fmt"

// Width identifies an access size in bytes.
type Width uint8

const (
	Width8   Width = 1
	Width16  Width = 2
	Width32  Width = 4
	Width64  Width = 8
	Width128 Width = 16
)

func (w Width) String() string {
	switch w {
	case Width8:
		return "u8"
	case Width16:
		return "u16"
	case Width32:
		return "u32"
	case Width64:
		return "u64"
	case Width128:
		return "u128"
	default:
		return fmt.Sprintf("u%d*8", w)
	}
}

// Device is the interface every MMIO peripheral implements. Offset is
// local to the device's base address (the bus subtracts the base
// before calling in). State is encapsulated by the concrete type; a
// device may perform host-side side effects (UART output, a
// test-finisher exit) but must never block indefinitely.
type Device interface {
	// Key is the device's stable string identifier, e.g. "uart16550",
	// "clint", "test_finisher". Used in textual device specs and in
	// fault messages.
	Key() string

	// Size is the device's addressable size in bytes; offsets must
	// satisfy offset+width <= Size().
	Size() uint32

	// Read returns the value at offset for the given width, or ok=false
	// if the device does not support that width at that offset.
	Read(offset uint32, width Width) (value uint64, ok bool)

	// Write stores value (truncated to width) at offset, or ok=false if
	// the device does not support that width at that offset.
	Write(offset uint32, width Width, value uint64) (ok bool)
}

// UnsupportedWidthError is returned by the bus (wrapped in
// bus.Fault) when a device rejects an access width it does not
// implement.
type UnsupportedWidthError struct {
	DeviceKey string
	Width     Width
}

func (e *UnsupportedWidthError) Error() string {
	return fmt.Sprintf("device %q: unsupported access width %s", e.DeviceKey, e.Width)
}
