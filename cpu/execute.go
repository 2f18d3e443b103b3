/*
 * rv32diff - Execute: the pure (State, DecodedInstruction) -> State|Fault step
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

import "github.com/rcornwell/rv32diff/bus"

// McauseIllegalInstruction and friends are the standard Mcause codes.
// Only McauseEnvCallFromM is raised on trap entry here: illegal
// instructions fault without a trap and ebreak ends the program.
const (
	McauseIllegalInstruction = 2
	McauseBreakpoint         = 3
	McauseEnvCallFromM       = 11
)

// Execute applies one decoded instruction to the register file and
// bus, returning the PC of the next instruction to fetch. It is the
// only place architectural state changes; Decode itself never
// mutates anything.
//
// On OpUnknown, Execute returns an *IllegalInstructionError and the
// caller must not count a retirement. On OpEbreak,
// Execute returns a *ProgramExit: a retirement that also ends the
// session. All other faults come from the bus (load/store) and
// propagate unchanged.
func Execute(rf *RegFile, b *bus.Bus, profile ISAProfile, pc uint32, word uint32, d DecodedInstruction) (nextPC uint32, err error) {
	nextPC = pc + 4

	switch d.Op {
	case OpUnknown:
		return pc, &IllegalInstructionError{PC: pc, Word: word}

	case OpLui:
		rf.SetGPR(d.Rd, uint32(d.Imm))
	case OpAuipc:
		rf.SetGPR(d.Rd, pc+uint32(d.Imm))

	case OpJal:
		rf.SetGPR(d.Rd, nextPC)
		nextPC = pc + uint32(d.Imm)
	case OpJalr:
		rf.SetGPR(d.Rd, nextPC)
		nextPC = (rf.GPR(d.Rs1) + uint32(d.Imm)) &^ 1

	case OpBeq:
		if rf.GPR(d.Rs1) == rf.GPR(d.Rs2) {
			nextPC = pc + uint32(d.Imm)
		}
	case OpBne:
		if rf.GPR(d.Rs1) != rf.GPR(d.Rs2) {
			nextPC = pc + uint32(d.Imm)
		}
	case OpBlt:
		if int32(rf.GPR(d.Rs1)) < int32(rf.GPR(d.Rs2)) {
			nextPC = pc + uint32(d.Imm)
		}
	case OpBge:
		if int32(rf.GPR(d.Rs1)) >= int32(rf.GPR(d.Rs2)) {
			nextPC = pc + uint32(d.Imm)
		}
	case OpBltu:
		if rf.GPR(d.Rs1) < rf.GPR(d.Rs2) {
			nextPC = pc + uint32(d.Imm)
		}
	case OpBgeu:
		if rf.GPR(d.Rs1) >= rf.GPR(d.Rs2) {
			nextPC = pc + uint32(d.Imm)
		}

	case OpAddi:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)+uint32(d.Imm))
	case OpSlti:
		rf.SetGPR(d.Rd, boolU32(int32(rf.GPR(d.Rs1)) < d.Imm))
	case OpSltiu:
		rf.SetGPR(d.Rd, boolU32(rf.GPR(d.Rs1) < uint32(d.Imm)))
	case OpXori:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)^uint32(d.Imm))
	case OpOri:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)|uint32(d.Imm))
	case OpAndi:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)&uint32(d.Imm))
	case OpSlli:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)<<(uint32(d.Imm)&0x1f))
	case OpSrli:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)>>(uint32(d.Imm)&0x1f))
	case OpSrai:
		rf.SetGPR(d.Rd, uint32(int32(rf.GPR(d.Rs1))>>(uint32(d.Imm)&0x1f)))

	case OpAdd:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)+rf.GPR(d.Rs2))
	case OpSub:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)-rf.GPR(d.Rs2))
	case OpSll:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)<<(rf.GPR(d.Rs2)&0x1f))
	case OpSlt:
		rf.SetGPR(d.Rd, boolU32(int32(rf.GPR(d.Rs1)) < int32(rf.GPR(d.Rs2))))
	case OpSltu:
		rf.SetGPR(d.Rd, boolU32(rf.GPR(d.Rs1) < rf.GPR(d.Rs2)))
	case OpXor:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)^rf.GPR(d.Rs2))
	case OpSrl:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)>>(rf.GPR(d.Rs2)&0x1f))
	case OpSra:
		rf.SetGPR(d.Rd, uint32(int32(rf.GPR(d.Rs1))>>(rf.GPR(d.Rs2)&0x1f)))
	case OpOr:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)|rf.GPR(d.Rs2))
	case OpAnd:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)&rf.GPR(d.Rs2))

	case OpLb:
		v, fault := b.Read8(rf.GPR(d.Rs1) + uint32(d.Imm))
		if fault != nil {
			return pc, fault
		}
		rf.SetGPR(d.Rd, uint32(int32(int8(v))))
	case OpLbu:
		v, fault := b.Read8(rf.GPR(d.Rs1) + uint32(d.Imm))
		if fault != nil {
			return pc, fault
		}
		rf.SetGPR(d.Rd, uint32(v))
	case OpLh:
		v, fault := b.Read16(rf.GPR(d.Rs1) + uint32(d.Imm))
		if fault != nil {
			return pc, fault
		}
		rf.SetGPR(d.Rd, uint32(int32(int16(v))))
	case OpLhu:
		v, fault := b.Read16(rf.GPR(d.Rs1) + uint32(d.Imm))
		if fault != nil {
			return pc, fault
		}
		rf.SetGPR(d.Rd, uint32(v))
	case OpLw:
		v, fault := b.Read32(rf.GPR(d.Rs1) + uint32(d.Imm))
		if fault != nil {
			return pc, fault
		}
		rf.SetGPR(d.Rd, v)

	case OpSb:
		if fault := b.Write8(rf.GPR(d.Rs1)+uint32(d.Imm), uint8(rf.GPR(d.Rs2))); fault != nil {
			return pc, fault
		}
	case OpSh:
		if fault := b.Write16(rf.GPR(d.Rs1)+uint32(d.Imm), uint16(rf.GPR(d.Rs2))); fault != nil {
			return pc, fault
		}
	case OpSw:
		if fault := b.Write32(rf.GPR(d.Rs1)+uint32(d.Imm), rf.GPR(d.Rs2)); fault != nil {
			return pc, fault
		}

	case OpFence:
		// No state to order in this core: a single in-process hart with
		// no pipeline or cache coherence to fence.
	case OpFenceI:
		// fence.i must not leave stale decoded forms behind; the
		// simulator's step loop performs the actual flush after seeing
		// this op, since Execute does not hold a reference to the
		// I-cache.

	case OpEcall:
		enterTrap(rf, McauseEnvCallFromM, pc, 0)
		nextPC = rf.CSR.Read(CSRMtvec) &^ 3
	case OpEbreak:
		// a0 carries the guest's exit status; zero means success.
		a0 := rf.GPR(10)
		return nextPC, &ProgramExit{Code: a0, Pass: a0 == 0}

	case OpMul:
		rf.SetGPR(d.Rd, rf.GPR(d.Rs1)*rf.GPR(d.Rs2))
	case OpMulh:
		rf.SetGPR(d.Rd, uint32(mulh(int64(int32(rf.GPR(d.Rs1))), int64(int32(rf.GPR(d.Rs2))))))
	case OpMulhsu:
		rf.SetGPR(d.Rd, uint32(mulhsu(int32(rf.GPR(d.Rs1)), rf.GPR(d.Rs2))))
	case OpMulhu:
		rf.SetGPR(d.Rd, uint32(mulhu(rf.GPR(d.Rs1), rf.GPR(d.Rs2))))
	case OpDiv:
		rf.SetGPR(d.Rd, divRV32(int32(rf.GPR(d.Rs1)), int32(rf.GPR(d.Rs2))))
	case OpDivu:
		rf.SetGPR(d.Rd, divuRV32(rf.GPR(d.Rs1), rf.GPR(d.Rs2)))
	case OpRem:
		rf.SetGPR(d.Rd, remRV32(int32(rf.GPR(d.Rs1)), int32(rf.GPR(d.Rs2))))
	case OpRemu:
		rf.SetGPR(d.Rd, remuRV32(rf.GPR(d.Rs1), rf.GPR(d.Rs2)))

	case OpCsrrw:
		old := rf.CSR.Read(d.Csr)
		rf.CSR.Write(d.Csr, rf.GPR(d.Rs1))
		rf.SetGPR(d.Rd, old)
	case OpCsrrs:
		old := rf.CSR.Read(d.Csr)
		if d.Rs1 != 0 {
			rf.CSR.Write(d.Csr, old|rf.GPR(d.Rs1))
		}
		rf.SetGPR(d.Rd, old)
	case OpCsrrc:
		old := rf.CSR.Read(d.Csr)
		if d.Rs1 != 0 {
			rf.CSR.Write(d.Csr, old&^rf.GPR(d.Rs1))
		}
		rf.SetGPR(d.Rd, old)
	case OpCsrrwi:
		old := rf.CSR.Read(d.Csr)
		rf.CSR.Write(d.Csr, d.Rs1)
		rf.SetGPR(d.Rd, old)
	case OpCsrrsi:
		old := rf.CSR.Read(d.Csr)
		if d.Rs1 != 0 {
			rf.CSR.Write(d.Csr, old|d.Rs1)
		}
		rf.SetGPR(d.Rd, old)
	case OpCsrrci:
		old := rf.CSR.Read(d.Csr)
		if d.Rs1 != 0 {
			rf.CSR.Write(d.Csr, old&^d.Rs1)
		}
		rf.SetGPR(d.Rd, old)

	case OpMret:
		mstatus := rf.CSR.Read(CSRMstatus)
		if mstatus&mstatusMPIE != 0 {
			mstatus |= mstatusMIE
		} else {
			mstatus &^= mstatusMIE
		}
		mstatus |= mstatusMPIE
		mstatus |= mstatusMPP0 | mstatusMPP1
		rf.CSR.Write(CSRMstatus, mstatus)
		nextPC = rf.CSR.Read(CSRMepc)
	}

	return nextPC, nil
}

// enterTrap performs machine-mode trap entry: save pc to
// mepc, write the cause, copy mstatus.mie into mstatus.mpie, clear
// mstatus.mie. The caller sets the new PC from mtvec afterward.
func enterTrap(rf *RegFile, cause, pc, tval uint32) {
	rf.CSR.Write(CSRMepc, pc)
	rf.CSR.Write(CSRMcause, cause)
	rf.CSR.Write(CSRMtval, tval)

	mstatus := rf.CSR.Read(CSRMstatus)
	if mstatus&mstatusMIE != 0 {
		mstatus |= mstatusMPIE
	} else {
		mstatus &^= mstatusMPIE
	}
	mstatus &^= mstatusMIE
	rf.CSR.Write(CSRMstatus, mstatus)
}

func boolU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func mulh(a, b int64) int64 {
	return (a * b) >> 32
}

func mulhsu(a int32, b uint32) int64 {
	return (int64(a) * int64(b)) >> 32
}

func mulhu(a, b uint32) uint64 {
	return (uint64(a) * uint64(b)) >> 32
}

// divRV32 implements div's architectural contract: division by zero
// yields ALL_ONES (-1); INT_MIN / -1 overflows and yields INT_MIN
// rather than trapping or panicking.
func divRV32(a, b int32) uint32 {
	if b == 0 {
		return ^uint32(0)
	}
	if a == -1<<31 && b == -1 {
		return uint32(a)
	}
	return uint32(a / b)
}

func divuRV32(a, b uint32) uint32 {
	if b == 0 {
		return ^uint32(0)
	}
	return a / b
}

// remRV32 implements rem's architectural contract: remainder by zero
// yields the dividend unchanged.
func remRV32(a, b int32) uint32 {
	if b == 0 {
		return uint32(a)
	}
	if a == -1<<31 && b == -1 {
		return 0
	}
	return uint32(a % b)
}

func remuRV32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
