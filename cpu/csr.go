/*
 * rv32diff - CSR file and the machine-mode CSRs this core implements
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
	"fmt"
	"sort"
)

// CSR numbers for every machine-mode register this core models.
const (
	CSRMstatus    = 0x300
	CSRMisa       = 0x301
	CSRMie        = 0x304
	CSRMtvec      = 0x305
	CSRMcounteren = 0x306
	CSRMscratch   = 0x340
	CSRMepc       = 0x341
	CSRMcause     = 0x342
	CSRMtval      = 0x343
	CSRMip        = 0x344
	CSRMvendorid  = 0xF11
	CSRMarchid    = 0xF12
	CSRMimpid     = 0xF13
	CSRMhartid    = 0xF14
)

// mstatus field bits this core tracks; everything else is WPRI and
// preserved verbatim across writes.
const (
	mstatusMIE  = 1 << 3
	mstatusMPIE = 1 << 7
	mstatusMPP0 = 1 << 11
	mstatusMPP1 = 1 << 12
)

// mstatusWriteMask selects the bits a CSR write may actually change;
// every other bit is WPRI and retains its previous value.
const mstatusWriteMask = mstatusMIE | mstatusMPIE | mstatusMPP0 | mstatusMPP1

// csrDef describes one CSR's write mask and its difftest comparison
// mask. A zero compareMask means the coordinator never compares this
// CSR.
type csrDef struct {
	writeMask   uint32
	compareMask uint32
	readOnly    bool
}

var csrDefs = map[uint32]csrDef{
	CSRMstatus:    {writeMask: mstatusWriteMask, compareMask: mstatusWriteMask},
	CSRMisa:       {readOnly: true, compareMask: 0},
	CSRMie:        {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMtvec:      {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMcounteren: {writeMask: 0xffffffff, compareMask: 0},
	CSRMscratch:   {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMepc:       {writeMask: 0xfffffffe, compareMask: 0xfffffffe},
	CSRMcause:     {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMtval:      {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMip:        {writeMask: 0xffffffff, compareMask: 0xffffffff},
	CSRMvendorid:  {readOnly: true, compareMask: 0},
	CSRMarchid:    {readOnly: true, compareMask: 0},
	CSRMimpid:     {readOnly: true, compareMask: 0},
	CSRMhartid:    {readOnly: true, compareMask: 0},
}

// CSRFile holds every CSR's current value, indexed by CSR number.
// Unlisted CSR numbers read as 0 until written; a write to one is
// stored verbatim without fault.
type CSRFile struct {
	values map[uint32]uint32
}

// NewCSRFile constructs a CSR file with architectural reset values:
// misa reports RV32I (plus M if enabled), vendor/arch/impl/hart IDs
// are 0 (unimplemented), and every other CSR resets to 0.
func NewCSRFile(hasM bool) *CSRFile {
	misa := uint32(1 << 8) // 'I'
	if hasM {
		misa |= 1 << 12 // 'M'
	}
	misa |= 1 << 30 // MXL = 1 (XLEN=32)
	f := &CSRFile{values: make(map[uint32]uint32, len(csrDefs))}
	f.values[CSRMisa] = misa
	return f
}

// Read returns the current value of csr. A number that was never
// written reads as 0.
func (f *CSRFile) Read(csr uint32) uint32 {
	return f.values[csr]
}

// Write applies a mask-aware write to csr, discarding the write
// entirely if the CSR is read-only.
func (f *CSRFile) Write(csr uint32, value uint32) {
	def, known := csrDefs[csr]
	if !known {
		f.values[csr] = value
		return
	}
	if def.readOnly {
		return
	}
	old := f.values[csr]
	f.values[csr] = (old &^ def.writeMask) | (value & def.writeMask)
}

// CompareMask returns the difftest comparison mask for csr; CSRs not
// in the architectural comparison list compare with mask 0, meaning
// they are always considered equal.
func (f *CSRFile) CompareMask(csr uint32) uint32 {
	return csrDefs[csr].compareMask
}

// ComparedCSRs returns the CSR numbers the difftest coordinator checks
// every step, in ascending CSR-number order: every CSR this core
// defines with a non-zero comparison mask.
func ComparedCSRs() []uint32 {
	out := make([]uint32, 0, len(csrDefs))
	for csr, def := range csrDefs {
		if def.compareMask != 0 {
			out = append(out, csr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// csrNames gives the assembler mnemonic for every CSR this core
// defines, used by the coordinator's mismatch report and the
// console's register dump.
var csrNames = map[uint32]string{
	CSRMstatus:    "mstatus",
	CSRMisa:       "misa",
	CSRMie:        "mie",
	CSRMtvec:      "mtvec",
	CSRMcounteren: "mcounteren",
	CSRMscratch:   "mscratch",
	CSRMepc:       "mepc",
	CSRMcause:     "mcause",
	CSRMtval:      "mtval",
	CSRMip:        "mip",
	CSRMvendorid:  "mvendorid",
	CSRMarchid:    "marchid",
	CSRMimpid:     "mimpid",
	CSRMhartid:    "mhartid",
}

// CSRName returns the mnemonic for csr, or a hex fallback if unknown.
func CSRName(csr uint32) string {
	if name, ok := csrNames[csr]; ok {
		return name
	}
	return fmt.Sprintf("csr%#x", csr)
}
