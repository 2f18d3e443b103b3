/*
 * rv32diff - Difftest coordinator: lock-step DUT/reference driver
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

package difftest

import "github.com/rcornwell/rv32diff/cpu"

// Coordinator drives a DUT and a Reference in lock-step, one DUT
// instruction at a time. It holds exclusive mutable
// access to both for the duration of a Step call; the reference is
// only ever touched through its Reference contract, never aliased
// with DUT state.
type Coordinator struct {
	DUT *cpu.Simulator
	Ref Reference
}

// New constructs a coordinator over an already-initialized DUT and
// reference. Both must start from the same reset state before the
// first Step: built from the same image, or brought there with
// Ref.SyncFrom.
func New(dut *cpu.Simulator, ref Reference) *Coordinator {
	return &Coordinator{DUT: dut, Ref: ref}
}

// Step advances the session by exactly one DUT instruction:
//
//  1. Step the DUT (never batched under difftest).
//  2. If the DUT step raised ProgramExit, report it and stop.
//  3. If the DUT step touched MMIO, skip the reference's step and
//     instead copy DUT registers into it (the reference cannot
//     observe device side effects). Otherwise step the reference too.
//  4. Compare PC, every GPR, and every CSR in the architectural
//     comparison list (masked per CSR). A difference raises
//     MismatchError with every differing register, not just the
//     first.
func (c *Coordinator) Step() error {
	dutErr := c.DUT.StepOnce()

	if exit, ok := cpu.AsProgramExit(dutErr); ok {
		return exit
	}
	if dutErr != nil {
		return dutErr
	}

	dutSnap := c.DUT.Reg.Snapshot()

	if c.DUT.Bus.MMIOTouched() {
		if err := c.Ref.SyncRegsFrom(dutSnap); err != nil {
			return &RefError{Detail: err.Error()}
		}
		return nil
	}

	if err := c.Ref.StepOnce(); err != nil {
		return &RefError{Detail: err.Error()}
	}

	if mismatches := c.compare(dutSnap); len(mismatches) > 0 {
		return &MismatchError{Mismatches: mismatches}
	}
	return nil
}

// compare builds the full list of differing registers between the
// DUT snapshot and the reference's current state.
func (c *Coordinator) compare(dutSnap cpu.Snapshot) []Mismatch {
	refSnap := c.Ref.Snapshot()
	var mismatches []Mismatch

	if dutSnap.PC != refSnap.PC {
		mismatches = append(mismatches, Mismatch{Name: "pc", DUT: dutSnap.PC, Ref: refSnap.PC})
	}
	for i := 1; i < 32; i++ {
		if dutSnap.GPR[i] != refSnap.GPR[i] {
			mismatches = append(mismatches, Mismatch{
				Name: cpu.GPRNames[i],
				DUT:  dutSnap.GPR[i],
				Ref:  refSnap.GPR[i],
			})
		}
	}
	for _, csr := range cpu.ComparedCSRs() {
		mask := c.DUT.Reg.CSR.CompareMask(csr)
		dutVal := c.DUT.Reg.CSR.Read(csr)
		refVal := c.Ref.ReadCSR(csr)
		if (dutVal & mask) != (refVal & mask) {
			mismatches = append(mismatches, Mismatch{Name: cpu.CSRName(csr), DUT: dutVal, Ref: refVal})
		}
	}
	return mismatches
}

// SyncMemory pushes one mutated span of DUT memory to the reference
// after a command-driven DUT memory write.
// Callers are responsible for identifying which regions changed; the
// coordinator does not track dirty regions itself.
func (c *Coordinator) SyncMemory(base uint32, data []byte) error {
	if err := c.Ref.SyncMemory(base, data); err != nil {
		return &RefError{Detail: err.Error()}
	}
	return nil
}
