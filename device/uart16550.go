/*
 * rv32diff - 16550-style UART device
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

import "io"

// 16550 register offsets (DLAB=0 view only; this model has no baud
// generator, it is a byte sink/source for guest programs).
const (
	regRBR = 0x0 // Receiver buffer (read)
	regTHR = 0x0 // Transmitter holding (write)
	regIER = 0x1 // Interrupt enable
	regIIR = 0x2 // Interrupt identification (read)
	regLCR = 0x3 // Line control
	regMCR = 0x4 // Modem control
	regLSR = 0x5 // Line status (read)
	regMSR = 0x6 // Modem status (read)
	regSCR = 0x7 // Scratch
)

const (
	lsrTHRE = 1 << 5 // Transmitter holding register empty
	lsrTEMT = 1 << 6 // Transmitter empty
)

// UART16550 is a minimal 16550 model: writes to THR are pushed to Out,
// reads of LSR always report the transmitter empty and ready so a
// guest polling loop never blocks. RBR always reads zero; there is no
// modeled input path.
type UART16550 struct {
	Out io.Writer
	ier uint8
	lcr uint8
	mcr uint8
	scr uint8
}

// NewUART16550 constructs a UART that writes transmitted bytes to out.
func NewUART16550(out io.Writer) *UART16550 {
	return &UART16550{Out: out}
}

func (u *UART16550) Key() string  { return "uart16550" }
func (u *UART16550) Size() uint32 { return 8 }

func (u *UART16550) Read(offset uint32, width Width) (uint64, bool) {
	if width != Width8 {
		return 0, false
	}
	switch offset {
	case regRBR:
		return 0, true
	case regIER:
		return uint64(u.ier), true
	case regIIR:
		return 0x01, true // no interrupt pending
	case regLCR:
		return uint64(u.lcr), true
	case regMCR:
		return uint64(u.mcr), true
	case regLSR:
		return uint64(lsrTHRE | lsrTEMT), true
	case regMSR:
		return 0, true
	case regSCR:
		return uint64(u.scr), true
	default:
		return 0, false
	}
}

func (u *UART16550) Write(offset uint32, width Width, value uint64) bool {
	if width != Width8 {
		return false
	}
	b := uint8(value)
	switch offset {
	case regTHR:
		if u.Out != nil {
			_, _ = u.Out.Write([]byte{b})
		}
		return true
	case regIER:
		u.ier = b
		return true
	case regLCR:
		u.lcr = b
		return true
	case regMCR:
		u.mcr = b
		return true
	case regSCR:
		u.scr = b
		return true
	default:
		return false
	}
}

// RejectsWrite reports that a write to IIR, LSR, or MSR is rejected
// because those registers are read-only, not because the width is
// unsupported (the bus surfaces this as a device I/O fault rather
// than an unsupported-width fault). Offset 0 is excluded: it aliases
// THR, which Write already accepts.
func (u *UART16550) RejectsWrite(offset uint32, width Width) (detail string, isIO bool) {
	if width != Width8 {
		return "", false
	}
	switch offset {
	case regIIR, regLSR, regMSR:
		return "write to read-only register", true
	default:
		return "", false
	}
}
