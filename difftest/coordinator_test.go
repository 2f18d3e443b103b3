/*
 * rv32diff - Difftest coordinator tests
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

import (
	"testing"

	"github.com/rcornwell/rv32diff/bus"
	"github.com/rcornwell/rv32diff/cpu"
	"github.com/rcornwell/rv32diff/device"
	"github.com/rcornwell/rv32diff/mem"
)

func encI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20&0xfff00000 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

const addiOp = 0b0010011
const swOp = 0b0100011
const luiOp = 0b0110111

func loadProgram(t *testing.T, b *bus.Bus, words []uint32) {
	t.Helper()
	for i, w := range words {
		if fault := b.Write32(uint32(i*4), w); fault != nil {
			t.Fatalf("loading program word %d: %v", i, fault)
		}
	}
}

type stubDevice struct{ last uint64 }

func (s *stubDevice) Key() string  { return "stub" }
func (s *stubDevice) Size() uint32 { return 4 }
func (s *stubDevice) Read(offset uint32, w device.Width) (uint64, bool) {
	return s.last, true
}
func (s *stubDevice) Write(offset uint32, w device.Width, value uint64) bool {
	s.last = value
	return true
}

func newMatchedPair(t *testing.T, program []uint32) (*cpu.Simulator, *Golden) {
	t.Helper()
	dutBus := bus.New(bus.DefaultDcacheSize)
	dutBus.AddRegion(mem.NewRegion("ram", 0, mem.PageSize*4))
	dutBus.AddDevice(mem.PageSize*4, &stubDevice{}) // just past RAM
	loadProgram(t, dutBus, program)
	dutSim := cpu.NewSimulator(dutBus, cpu.DefaultISAProfile, 0, cpu.DefaultICacheSize)

	refBus := bus.New(bus.DefaultDcacheSize)
	refBus.AddRegion(mem.NewRegion("ram", 0, mem.PageSize*4))
	loadProgram(t, refBus, program)
	refSim := cpu.NewSimulator(refBus, cpu.DefaultISAProfile, 0, cpu.DefaultICacheSize)

	return dutSim, NewGolden(refSim)
}

// TestCoordinatorLockStepMatching covers testable property 8: a DUT
// and reference running the same program from the same reset state
// report no mismatch over every step.
func TestCoordinatorLockStepMatching(t *testing.T) {
	program := []uint32{
		mem.PageSize*4 | 1<<7 | luiOp,   // x1 = device base (lui)
		encI(addiOp, 0b000, 2, 0, 0x77), // x2 = 0x77
		encS(swOp, 0b010, 1, 2, 0),      // MMIO write, DUT only
		encI(addiOp, 0b000, 3, 0, 9),    // x3 = 9
	}
	dut, ref := newMatchedPair(t, program)
	c := New(dut, ref)

	for i := 0; i < len(program); i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := dut.Reg.GPR(3); got != 9 {
		t.Errorf("dut x3 = %d, want 9", got)
	}
}

// TestCoordinatorSkipsReferenceOnMMIO covers scenario S6: a DUT step
// that touches MMIO must not step the reference at all, only sync its
// registers -- stepping the reference would fault since its bus has no
// device mapped at that address.
func TestCoordinatorSkipsReferenceOnMMIO(t *testing.T) {
	program := []uint32{
		mem.PageSize*4 | 1<<7 | luiOp,
		encI(addiOp, 0b000, 2, 0, 0x77),
		encS(swOp, 0b010, 1, 2, 0),
	}
	dut, ref := newMatchedPair(t, program)
	c := New(dut, ref)

	for i := 0; i < 2; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("setup step %d: %v", i, err)
		}
	}
	if err := c.Step(); err != nil {
		t.Fatalf("mmio step: %v", err)
	}
	if dut.Reg.PC != ref.Snapshot().PC {
		t.Errorf("dut pc = %#x, ref pc = %#x after MMIO skip, want equal", dut.Reg.PC, ref.Snapshot().PC)
	}
}

// TestCoordinatorDetectsDivergence covers the other half of property 8:
// once the DUT and reference genuinely disagree, Step must report
// every differing register, not silently continue.
func TestCoordinatorDetectsDivergence(t *testing.T) {
	program := []uint32{
		encI(addiOp, 0b000, 5, 0, 1), // x5 = 1
		encI(addiOp, 0b000, 6, 5, 0), // x6 = x5
	}
	dut, ref := newMatchedPair(t, program)
	c := New(dut, ref)

	if err := c.Step(); err != nil {
		t.Fatalf("step 0: %v", err)
	}
	// Force a divergence a real bug might produce: only the DUT's x5 is
	// corrupted, the reference's is not.
	dut.Reg.SetGPR(5, 0xdead)

	err := c.Step()
	mismatch, ok := err.(*MismatchError)
	if !ok {
		t.Fatalf("Step() error = %v, want *MismatchError", err)
	}
	found := false
	for _, m := range mismatch.Mismatches {
		if m.Name == cpu.GPRNames[6] {
			found = true
		}
	}
	if !found {
		t.Errorf("mismatch list %+v missing x6", mismatch.Mismatches)
	}
}

// TestCoordinatorReportsProgramExit covers the DUT-ends-the-session
// path: ebreak must surface as *cpu.ProgramExit, not a mismatch.
func TestCoordinatorReportsProgramExit(t *testing.T) {
	program := []uint32{0x00100073} // ebreak
	dut, ref := newMatchedPair(t, program)
	c := New(dut, ref)

	err := c.Step()
	exit, ok := cpu.AsProgramExit(err)
	if !ok {
		t.Fatalf("Step() error = %v, want *cpu.ProgramExit", err)
	}
	if !exit.Pass {
		t.Errorf("exit.Pass = false, want true")
	}
}
