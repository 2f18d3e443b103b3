/*
 * rv32diff - In-process "golden" reference: a second DUT-shaped simulator
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

// Golden is the buildable-without-cgo Reference: a second, independent
// cpu.Simulator instance built from the same decode/execute engine as
// the DUT. A deployment hunting real divergence bugs would instead
// (or additionally) wire in refsim.CFFI against a native simulator.
type Golden struct {
	sim *cpu.Simulator
}

// NewGolden constructs a Golden reference driving its own bus and
// register file, independent of the DUT's.
func NewGolden(sim *cpu.Simulator) *Golden {
	return &Golden{sim: sim}
}

func (g *Golden) StepOnce() error {
	return g.sim.StepOnce()
}

func (g *Golden) SyncFrom(regs cpu.Snapshot, regions []MemoryRegion) error {
	g.sim.Reg.Restore(regs)
	for _, r := range regions {
		if fault := g.sim.Bus.WriteBytes(r.Base, r.Data); fault != nil {
			return fault
		}
	}
	g.sim.FlushState()
	return nil
}

func (g *Golden) SyncRegsFrom(regs cpu.Snapshot) error {
	g.sim.Reg.Restore(regs)
	g.sim.ICache.Flush()
	return nil
}

func (g *Golden) SyncMemory(base uint32, data []byte) error {
	if fault := g.sim.Bus.WriteBytes(base, data); fault != nil {
		return fault
	}
	return nil
}

func (g *Golden) ReadCSR(csr uint32) uint32 {
	return g.sim.Reg.CSR.Read(csr)
}

func (g *Golden) Snapshot() cpu.Snapshot {
	return g.sim.Reg.Snapshot()
}

func (g *Golden) Close() error { return nil }
