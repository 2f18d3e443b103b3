/*
 * rv32diff - Instruction decode: opcode/funct3/funct7 dispatch, immediates
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

// Op is a closed sum type over every opcode this core implements,
// across RV32I and the optional M/Zicsr/Priv extensions.
type Op int

const (
	OpUnknown Op = iota

	// RV32I: integer register-immediate
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpLui
	OpAuipc

	// RV32I: integer register-register
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd

	// RV32I: control transfer
	OpJal
	OpJalr
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu

	// RV32I: loads and stores
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw

	// RV32I: memory ordering and system
	OpFence
	OpFenceI
	OpEcall
	OpEbreak

	// RV32M
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	// Zicsr
	OpCsrrw
	OpCsrrs
	OpCsrrc
	OpCsrrwi
	OpCsrrsi
	OpCsrrci

	// Priv
	OpMret
)

// DecodedInstruction is a small plain record: register operands, a
// single post-sign-extended immediate, and a tagged opcode.
type DecodedInstruction struct {
	Op   Op
	Rd   uint32
	Rs1  uint32
	Rs2  uint32
	Imm  int32
	// Csr holds the 12-bit CSR number for Zicsr ops; for the
	// immediate-source csrrwi/csrrsi/csrrci variants, Rs1 instead
	// holds the 5-bit zero-extended immediate.
	Csr uint32
}

func bits(word, hi, lo uint32) uint32 {
	return (word >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, bit uint32) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}

func immI(word uint32) int32 {
	return signExtend(bits(word, 31, 20), 11)
}

func immS(word uint32) int32 {
	v := bits(word, 31, 25)<<5 | bits(word, 11, 7)
	return signExtend(v, 11)
}

func immB(word uint32) int32 {
	v := bits(word, 31, 31)<<12 | bits(word, 7, 7)<<11 |
		bits(word, 30, 25)<<5 | bits(word, 11, 8)<<1
	return signExtend(v, 12)
}

func immU(word uint32) int32 {
	return int32(bits(word, 31, 12) << 12)
}

func immJ(word uint32) int32 {
	v := bits(word, 31, 31)<<20 | bits(word, 19, 12)<<12 |
		bits(word, 20, 20)<<11 | bits(word, 30, 21)<<1
	return signExtend(v, 20)
}

// Decode translates one 32-bit little-endian instruction word into a
// DecodedInstruction. It is pure and deterministic: the same word
// with the same ISAProfile always decodes identically. Unsupported or
// malformed encodings decode to OpUnknown.
func Decode(word uint32, profile ISAProfile) DecodedInstruction {
	opcode := bits(word, 6, 0)
	funct3 := bits(word, 14, 12)
	funct7 := bits(word, 31, 25)
	rd := bits(word, 11, 7)
	rs1 := bits(word, 19, 15)
	rs2 := bits(word, 24, 20)

	switch opcode {
	case 0b0010011: // OP-IMM
		imm := immI(word)
		switch funct3 {
		case 0b000:
			return DecodedInstruction{Op: OpAddi, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b010:
			return DecodedInstruction{Op: OpSlti, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b011:
			return DecodedInstruction{Op: OpSltiu, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b100:
			return DecodedInstruction{Op: OpXori, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b110:
			return DecodedInstruction{Op: OpOri, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b111:
			return DecodedInstruction{Op: OpAndi, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b001:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpSlli, Rd: rd, Rs1: rs1, Imm: int32(bits(word, 24, 20))}
			}
		case 0b101:
			switch funct7 {
			case 0b0000000:
				return DecodedInstruction{Op: OpSrli, Rd: rd, Rs1: rs1, Imm: int32(bits(word, 24, 20))}
			case 0b0100000:
				return DecodedInstruction{Op: OpSrai, Rd: rd, Rs1: rs1, Imm: int32(bits(word, 24, 20))}
			}
		}
		return unknown()

	case 0b0110111: // LUI
		return DecodedInstruction{Op: OpLui, Rd: rd, Imm: immU(word)}

	case 0b0010111: // AUIPC
		return DecodedInstruction{Op: OpAuipc, Rd: rd, Imm: immU(word)}

	case 0b0110011: // OP
		if profile.HasM && funct7 == 0b0000001 {
			switch funct3 {
			case 0b000:
				return DecodedInstruction{Op: OpMul, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b001:
				return DecodedInstruction{Op: OpMulh, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b010:
				return DecodedInstruction{Op: OpMulhsu, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b011:
				return DecodedInstruction{Op: OpMulhu, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b100:
				return DecodedInstruction{Op: OpDiv, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b101:
				return DecodedInstruction{Op: OpDivu, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b110:
				return DecodedInstruction{Op: OpRem, Rd: rd, Rs1: rs1, Rs2: rs2}
			case 0b111:
				return DecodedInstruction{Op: OpRemu, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
			return unknown()
		}
		switch funct3 {
		case 0b000:
			if funct7 == 0b0100000 {
				return DecodedInstruction{Op: OpSub, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
			if funct7 == 0 {
				return DecodedInstruction{Op: OpAdd, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b001:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpSll, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b010:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpSlt, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b011:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpSltu, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b100:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpXor, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b101:
			if funct7 == 0b0100000 {
				return DecodedInstruction{Op: OpSra, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
			if funct7 == 0 {
				return DecodedInstruction{Op: OpSrl, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b110:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpOr, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		case 0b111:
			if funct7 == 0 {
				return DecodedInstruction{Op: OpAnd, Rd: rd, Rs1: rs1, Rs2: rs2}
			}
		}
		return unknown()

	case 0b1101111: // JAL
		return DecodedInstruction{Op: OpJal, Rd: rd, Imm: immJ(word)}

	case 0b1100111: // JALR
		if funct3 != 0 {
			return unknown()
		}
		return DecodedInstruction{Op: OpJalr, Rd: rd, Rs1: rs1, Imm: immI(word)}

	case 0b1100011: // BRANCH
		imm := immB(word)
		switch funct3 {
		case 0b000:
			return DecodedInstruction{Op: OpBeq, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b001:
			return DecodedInstruction{Op: OpBne, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b100:
			return DecodedInstruction{Op: OpBlt, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b101:
			return DecodedInstruction{Op: OpBge, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b110:
			return DecodedInstruction{Op: OpBltu, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b111:
			return DecodedInstruction{Op: OpBgeu, Rs1: rs1, Rs2: rs2, Imm: imm}
		}
		return unknown()

	case 0b0000011: // LOAD
		imm := immI(word)
		switch funct3 {
		case 0b000:
			return DecodedInstruction{Op: OpLb, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b001:
			return DecodedInstruction{Op: OpLh, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b010:
			return DecodedInstruction{Op: OpLw, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b100:
			return DecodedInstruction{Op: OpLbu, Rd: rd, Rs1: rs1, Imm: imm}
		case 0b101:
			return DecodedInstruction{Op: OpLhu, Rd: rd, Rs1: rs1, Imm: imm}
		}
		return unknown()

	case 0b0100011: // STORE
		imm := immS(word)
		switch funct3 {
		case 0b000:
			return DecodedInstruction{Op: OpSb, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b001:
			return DecodedInstruction{Op: OpSh, Rs1: rs1, Rs2: rs2, Imm: imm}
		case 0b010:
			return DecodedInstruction{Op: OpSw, Rs1: rs1, Rs2: rs2, Imm: imm}
		}
		return unknown()

	case 0b0001111: // MISC-MEM
		if funct3 == 0b001 {
			return DecodedInstruction{Op: OpFenceI}
		}
		return DecodedInstruction{Op: OpFence}

	case 0b1110011: // SYSTEM
		switch funct3 {
		case 0b000:
			switch bits(word, 31, 20) {
			case 0x000:
				return DecodedInstruction{Op: OpEcall}
			case 0x001:
				return DecodedInstruction{Op: OpEbreak}
			case 0x302:
				if profile.HasPriv {
					return DecodedInstruction{Op: OpMret}
				}
			}
			return unknown()
		}
		if !profile.HasZicsr {
			return unknown()
		}
		csr := bits(word, 31, 20)
		switch funct3 {
		case 0b001:
			return DecodedInstruction{Op: OpCsrrw, Rd: rd, Rs1: rs1, Csr: csr}
		case 0b010:
			return DecodedInstruction{Op: OpCsrrs, Rd: rd, Rs1: rs1, Csr: csr}
		case 0b011:
			return DecodedInstruction{Op: OpCsrrc, Rd: rd, Rs1: rs1, Csr: csr}
		case 0b101:
			return DecodedInstruction{Op: OpCsrrwi, Rd: rd, Rs1: rs1, Csr: csr}
		case 0b110:
			return DecodedInstruction{Op: OpCsrrsi, Rd: rd, Rs1: rs1, Csr: csr}
		case 0b111:
			return DecodedInstruction{Op: OpCsrrci, Rd: rd, Rs1: rs1, Csr: csr}
		}
		return unknown()
	}

	return unknown()
}

func unknown() DecodedInstruction {
	return DecodedInstruction{Op: OpUnknown}
}
