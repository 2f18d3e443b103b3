/*
 * rv32diff - cgo-gated adapter for a native FFI reference simulator
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

//go:build cgo && refsim_cffi

// Package refsim implements difftest.Reference over a native,
// cgo-linked reference simulator. No native simulator is bundled with
// this module; this file declares the C ABI boundary a Spike- or
// Unicorn-style shim exposes. It is excluded from ordinary builds by
// the refsim_cffi build tag.
package refsim

/*
#include <stdint.h>
#include <stdlib.h>

// Fixed-layout register block shared across the boundary:
// cache-sensitive, no reordering or padding the compiler is free to
// introduce.
typedef struct {
	uint32_t pc;
	uint32_t gpr[32];
} rv32diff_difftest_regs;

typedef void *rv32diff_ctx;

extern rv32diff_ctx rv32diff_ref_init(const uint32_t *region_bases, const uint32_t *region_sizes, int n_regions,
	uint32_t init_pc, const uint32_t *init_gpr, int xlen, const char *isa);
extern void rv32diff_ref_copy_mem(rv32diff_ctx ctx, uint32_t base, const uint8_t *data, uint64_t len);
extern void rv32diff_ref_sync_mem(rv32diff_ctx ctx, uint32_t base, const uint8_t *data, uint64_t len);
extern void rv32diff_ref_read_mem(rv32diff_ctx ctx, uint32_t addr, uint8_t *out, uint64_t len);
extern void rv32diff_ref_write_mem(rv32diff_ctx ctx, uint32_t addr, const uint8_t *data, uint64_t len);
extern int rv32diff_ref_step(rv32diff_ctx ctx);
extern uint32_t rv32diff_ref_get_pc(rv32diff_ctx ctx);
extern const uint32_t *rv32diff_ref_get_gpr_ptr(rv32diff_ctx ctx);
extern uint32_t rv32diff_ref_get_csr(rv32diff_ctx ctx, uint32_t addr);
extern void rv32diff_ref_sync_regs_to_ref(rv32diff_ctx ctx, const rv32diff_difftest_regs *regs);
extern void rv32diff_ref_fini(rv32diff_ctx ctx);
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/rcornwell/rv32diff/cpu"
	"github.com/rcornwell/rv32diff/difftest"
)

// step() return codes: 0 ok, 1 exit, anything else is an error.
const (
	stepOK = iota
	stepExit
)

// CFFI adapts a native reference simulator exposing the C ABI declared
// above to difftest.Reference. Callers must not retain pointers past
// the next call into the reference.
type CFFI struct {
	ctx C.rv32diff_ctx
}

// NewCFFI initializes a new reference session:
// region layout, reset PC and GPRs, XLEN, and the ISA string all cross
// the boundary in one call.
func NewCFFI(regions []difftest.MemoryRegion, initPC uint32, initGPR [32]uint32, isa string) *CFFI {
	bases := make([]C.uint32_t, len(regions))
	sizes := make([]C.uint32_t, len(regions))
	for i, r := range regions {
		bases[i] = C.uint32_t(r.Base)
		sizes[i] = C.uint32_t(len(r.Data))
	}
	var gpr [32]C.uint32_t
	for i, v := range initGPR {
		gpr[i] = C.uint32_t(v)
	}
	cIsa := C.CString(isa)
	defer C.free(unsafe.Pointer(cIsa))

	var basesPtr, sizesPtr *C.uint32_t
	if len(bases) > 0 {
		basesPtr = &bases[0]
		sizesPtr = &sizes[0]
	}

	ctx := C.rv32diff_ref_init(basesPtr, sizesPtr, C.int(len(regions)), C.uint32_t(initPC), &gpr[0], 32, cIsa)

	c := &CFFI{ctx: ctx}
	for _, r := range regions {
		_ = c.SyncMemory(r.Base, r.Data)
	}
	return c
}

func (c *CFFI) StepOnce() error {
	switch C.rv32diff_ref_step(c.ctx) {
	case stepOK:
		return nil
	case stepExit:
		return &cpu.ProgramExit{Code: 0, Pass: true}
	default:
		return fmt.Errorf("reference step failed")
	}
}

func (c *CFFI) SyncFrom(regs cpu.Snapshot, regions []difftest.MemoryRegion) error {
	if err := c.SyncRegsFrom(regs); err != nil {
		return err
	}
	for _, r := range regions {
		if err := c.SyncMemory(r.Base, r.Data); err != nil {
			return err
		}
	}
	return nil
}

func (c *CFFI) SyncRegsFrom(regs cpu.Snapshot) error {
	var creg C.rv32diff_difftest_regs
	creg.pc = C.uint32_t(regs.PC)
	for i, v := range regs.GPR {
		creg.gpr[i] = C.uint32_t(v)
	}
	C.rv32diff_ref_sync_regs_to_ref(c.ctx, &creg)
	return nil
}

func (c *CFFI) SyncMemory(base uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	C.rv32diff_ref_sync_mem(c.ctx, C.uint32_t(base), (*C.uint8_t)(unsafe.Pointer(&data[0])), C.uint64_t(len(data)))
	return nil
}

func (c *CFFI) ReadCSR(csr uint32) uint32 {
	return uint32(C.rv32diff_ref_get_csr(c.ctx, C.uint32_t(csr)))
}

// Snapshot reads the reference's PC and GPR file through the
// non-owning pointers the shim keeps valid until the next step call.
func (c *CFFI) Snapshot() cpu.Snapshot {
	pc := uint32(C.rv32diff_ref_get_pc(c.ctx))
	gprPtr := C.rv32diff_ref_get_gpr_ptr(c.ctx)
	gprSlice := unsafe.Slice((*uint32)(unsafe.Pointer(gprPtr)), 32)

	var s cpu.Snapshot
	s.PC = pc
	copy(s.GPR[:], gprSlice)
	s.GPR[0] = 0
	return s
}

func (c *CFFI) Close() error {
	C.rv32diff_ref_fini(c.ctx)
	return nil
}
