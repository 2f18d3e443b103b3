/*
 * rv32diff - Register file: PC, GPRs, optional FPR hole, CSR file
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

// Package cpu implements the RV32 register file, instruction decoder,
// executor, instruction cache, and the DUT step loop.
package cpu

import "fmt"

// GPRNames gives the RISC-V ABI name for each of the 32 integer
// registers, in the order the original toolchains use them (x0 "zero"
// through x31 "t6"); used by the difftest mismatch report and the
// console's register dump.
var GPRNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// ISAProfile describes which optional extensions a Simulator
// instantiates. Go's generics do not let zero-cost marker types elide
// storage, and a generic Simulator[P] would not buy anything a plain
// runtime struct doesn't (FPR storage here is a fixed, tiny array
// regardless of HasF, not a zero-sized type), so the profile is an
// ordinary value consulted at decode and execute time.
type ISAProfile struct {
	HasM     bool // integer multiply/divide
	HasZicsr bool // csrrw/csrrs/csrrc and friends
	HasPriv  bool // mret (ecall trap entry does not depend on it)
}

// DefaultISAProfile enables every extension this core implements.
var DefaultISAProfile = ISAProfile{HasM: true, HasZicsr: true, HasPriv: true}

// RegFile is the architectural register state: PC, 32 GPRs, an FPR
// hole (no implemented instruction touches it; the typed hole keeps
// the struct layout ready for a future F extension), and the CSR
// file.
type RegFile struct {
	PC  uint32
	gpr [32]uint32
	FPR [32]uint64
	CSR *CSRFile
}

// NewRegFile constructs a register file reset to the given PC with
// every GPR and CSR at its architectural reset value.
func NewRegFile(resetPC uint32, profile ISAProfile) *RegFile {
	return &RegFile{
		PC:  resetPC,
		CSR: NewCSRFile(profile.HasM),
	}
}

// GPR reads general register i. Register 0 always reads as 0.
func (r *RegFile) GPR(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return r.gpr[i]
}

// SetGPR writes general register i. Writes to register 0 are
// suppressed.
func (r *RegFile) SetGPR(i uint32, v uint32) {
	if i == 0 {
		return
	}
	r.gpr[i] = v
}

// String renders the register file on one line: the PC, then x1-x31
// by ABI name.
func (r *RegFile) String() string {
	s := fmt.Sprintf("pc=%#010x", r.PC)
	for i := 1; i < 32; i++ {
		s += fmt.Sprintf(" %s=%#x", GPRNames[i], r.gpr[i])
	}
	return s
}

// Snapshot is a value copy of every GPR (including x0, always 0) plus
// PC, used by the difftest coordinator's sync_regs_from/regs_diff
// contract without exposing the live RegFile.
type Snapshot struct {
	PC  uint32
	GPR [32]uint32
}

// Snapshot captures the current architectural register state.
func (r *RegFile) Snapshot() Snapshot {
	s := Snapshot{PC: r.PC}
	s.GPR = r.gpr
	s.GPR[0] = 0
	return s
}

// Restore overwrites PC and every GPR from a snapshot; used by the
// coordinator's sync_regs_from when bypassing an MMIO side effect.
func (r *RegFile) Restore(s Snapshot) {
	r.PC = s.PC
	r.gpr = s.GPR
	r.gpr[0] = 0
}
