/*
 * rv32diff - Test finisher sentinel device
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

// Test-finisher magic values. A word write of ExitPass causes a clean
// Good(0) termination; any other value is a Bad(code) termination
// with the written value shifted right by one as the guest exit code
// (value >> 1 convention borrowed from riscv-tests' own finisher).
const (
	ExitPass uint32 = 0x5555
	exitFail uint32 = 0x3333
)

// Finished records that the device was written to and what exit value
// it saw; the session layer checks this once per step rather than forcing
// every device through a generic "raise an exit signal" callback.
type Finished struct {
	Hit  bool
	Code uint32
	Pass bool
}

// TestFinisher is the sentinel MMIO device used to signal program
// termination from a guest program (riscv-tests convention): a single
// 32-bit write register at offset 0.
type TestFinisher struct {
	last Finished
}

// NewTestFinisher constructs an armed, unfired test finisher.
func NewTestFinisher() *TestFinisher {
	return &TestFinisher{}
}

func (f *TestFinisher) Key() string  { return "test_finisher" }
func (f *TestFinisher) Size() uint32 { return 4 }

func (f *TestFinisher) Read(offset uint32, width Width) (uint64, bool) {
	if offset != 0 || width != Width32 {
		return 0, false
	}
	return 0, true
}

func (f *TestFinisher) Write(offset uint32, width Width, value uint64) bool {
	if offset != 0 || width != Width32 {
		return false
	}
	v := uint32(value)
	f.last = Finished{Hit: true, Code: v}
	if v == ExitPass {
		f.last.Pass = true
		f.last.Code = 0
	} else {
		f.last.Pass = false
		f.last.Code = v >> 1
	}
	return true
}

// Take returns and clears the most recent finish signal.
func (f *TestFinisher) Take() (Finished, bool) {
	last := f.last
	f.last = Finished{}
	return last, last.Hit
}
