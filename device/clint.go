/*
 * rv32diff - CLINT timer device
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

package device

// CLINT register layout, SiFive convention: mtimecmp at 0x4000,
// mtime at 0xbff8. This core counts retired instructions, not wall
// time; mtime advances once per CLINT.Tick call, which the session
// layer in cmd/rvdiff invokes on the DUT's CLINT once per successful
// step. There is no timer interrupt delivery
// in this core (machine-mode-only, no interrupt controller is
// modeled) -- mtime/mtimecmp exist so guest programs that poll CLINT
// for cooperative yielding behave identically under the DUT and the
// reference.
const (
	clintMTimeCmp = 0x4000
	clintMTime    = 0xbff8
)

// CLINT is a minimal machine-mode timer device.
type CLINT struct {
	mtimeCmp uint64
	mtime    uint64
}

// NewCLINT constructs a CLINT with mtime and mtimecmp both zero.
func NewCLINT() *CLINT {
	return &CLINT{}
}

// Tick advances mtime by one. The session layer calls this once per
// successful step so that mtime has a bit-exact, reproducible
// relationship to instruction count under difftest.
func (c *CLINT) Tick() {
	c.mtime++
}

func (c *CLINT) Key() string  { return "clint" }
func (c *CLINT) Size() uint32 { return 0xc000 }

func (c *CLINT) Read(offset uint32, width Width) (uint64, bool) {
	if width != Width32 && width != Width64 {
		return 0, false
	}
	switch offset {
	case clintMTimeCmp:
		return readSplit64(c.mtimeCmp, width), true
	case clintMTimeCmp + 4:
		if width != Width32 {
			return 0, false
		}
		return c.mtimeCmp >> 32, true
	case clintMTime:
		return readSplit64(c.mtime, width), true
	case clintMTime + 4:
		if width != Width32 {
			return 0, false
		}
		return c.mtime >> 32, true
	default:
		return 0, false
	}
}

func (c *CLINT) Write(offset uint32, width Width, value uint64) bool {
	if width != Width32 && width != Width64 {
		return false
	}
	switch offset {
	case clintMTimeCmp:
		c.mtimeCmp = writeSplit64(c.mtimeCmp, width, value, false)
		return true
	case clintMTimeCmp + 4:
		if width != Width32 {
			return false
		}
		c.mtimeCmp = writeSplit64(c.mtimeCmp, width, value, true)
		return true
	case clintMTime:
		c.mtime = writeSplit64(c.mtime, width, value, false)
		return true
	case clintMTime + 4:
		if width != Width32 {
			return false
		}
		c.mtime = writeSplit64(c.mtime, width, value, true)
		return true
	default:
		return false
	}
}

func readSplit64(v uint64, width Width) uint64 {
	if width == Width32 {
		return v & 0xffffffff
	}
	return v
}

func writeSplit64(old uint64, width Width, value uint64, upper bool) uint64 {
	if width == Width64 {
		return value
	}
	if upper {
		return (old & 0xffffffff) | (value << 32)
	}
	return (old &^ 0xffffffff) | (value & 0xffffffff)
}
