/*
 * rv32diff - Bus fault taxonomy
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
	"fmt"

	"github.com/rcornwell/rv32diff/device"
)

// Tag classifies a Fault the way the CLI layer's short taxonomy tag
// is meant to be printed.
type Tag int

const (
	TagUnmapped Tag = iota
	TagUnsupportedWidth
	TagDeviceIO
)

func (t Tag) String() string {
	switch t {
	case TagUnmapped:
		return "unmapped"
	case TagUnsupportedWidth:
		return "unsupported-width"
	case TagDeviceIO:
		return "device-io"
	default:
		return "unknown"
	}
}

// Fault is returned by every fallible Bus operation. It is never
// raised as a panic during normal operation; only a malformed region
// layout discovered at construction time panics (a programmer error).
type Fault struct {
	Tag  Tag
	Addr uint32
	Err  error // wrapped cause, e.g. *device.UnsupportedWidthError
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s at %#08x: %v", f.Tag, f.Addr, f.Err)
	}
	return fmt.Sprintf("%s at %#08x", f.Tag, f.Addr)
}

func (f *Fault) Unwrap() error { return f.Err }

func unmapped(addr uint32) *Fault {
	return &Fault{Tag: TagUnmapped, Addr: addr}
}

func unsupportedWidth(addr uint32, key string, w device.Width) *Fault {
	return &Fault{Tag: TagUnsupportedWidth, Addr: addr, Err: &device.UnsupportedWidthError{DeviceKey: key, Width: w}}
}

// deviceIOError wraps a device-reported I/O failure: a device
// accepted the width but rejected the access for a reason of its own,
// e.g. a write to a read-only field.
type deviceIOError struct {
	DeviceKey string
	Detail    string
}

func (e *deviceIOError) Error() string {
	return fmt.Sprintf("device %q: %s", e.DeviceKey, e.Detail)
}

func deviceIO(addr uint32, key, detail string) *Fault {
	return &Fault{Tag: TagDeviceIO, Addr: addr, Err: &deviceIOError{DeviceKey: key, Detail: detail}}
}

// RejectsWrite is implemented by devices that distinguish "this write
// targets a read-only or otherwise inapplicable field" from "this
// device does not support this width at all". A Write returning
// ok=false raises TagUnsupportedWidth unless the device also satisfies
// this interface and RejectsWrite reports true; a Read returning
// ok=false always raises TagUnsupportedWidth.
type rejectsWrite interface {
	RejectsWrite(offset uint32, width device.Width) (detail string, isIO bool)
}
