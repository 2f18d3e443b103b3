/*
 * rv32diff - CPU-level fault taxonomy: illegal instruction, program exit
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

import (
	"errors"
	"fmt"
)

// IllegalInstructionError is returned when decode produced OpUnknown
// or execution otherwise rejected the decoded form. Unlike
// ecall/ebreak, this core does not enter the trap handler for it: the
// step loop stops immediately and does not count a retirement, so a
// faulted instruction looks like it never executed.
type IllegalInstructionError struct {
	PC   uint32
	Word uint32
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction %#08x at pc %#08x", e.Word, e.PC)
}

// ProgramExit is a cooperative termination signal, not an error in
// the usual sense: ebreak raises it directly from Execute.
// A test-finisher MMIO device signals completion the same way but at
// the session layer, since Execute has no device-specific knowledge.
// The step loop still counts the retirement that produced it before
// surfacing it to the caller.
type ProgramExit struct {
	Code uint32
	Pass bool
}

func (e *ProgramExit) Error() string {
	if e.Pass {
		return "program exit: pass"
	}
	return fmt.Sprintf("program exit: fail code %d", e.Code)
}

// ErrInterrupted is returned by StepN when the cooperative cancellation
// flag was observed set at a batch boundary. Partial
// progress made before the flag was observed is preserved: the PC
// points at the next instruction to retire.
var ErrInterrupted = errors.New("interrupted")

// AsProgramExit reports whether err is (or wraps) a *ProgramExit.
func AsProgramExit(err error) (*ProgramExit, bool) {
	var exit *ProgramExit
	if errors.As(err, &exit) {
		return exit, true
	}
	return nil, false
}

// AsIllegalInstruction reports whether err is (or wraps) an
// *IllegalInstructionError.
func AsIllegalInstruction(err error) (*IllegalInstructionError, bool) {
	var ill *IllegalInstructionError
	if errors.As(err, &ill) {
		return ill, true
	}
	return nil, false
}
