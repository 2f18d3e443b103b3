/*
 * rv32diff - Reference simulator contract
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

// Package difftest implements the differential-testing coordinator:
// it drives a DUT simulator and one reference simulator in lock-step,
// comparing architectural state after every retirement and reconciling
// MMIO side effects the reference cannot observe.
package difftest

import "github.com/rcornwell/rv32diff/cpu"

// Reference is the contract every reference simulator -- in-process
// or FFI-wrapped -- implements. The coordinator never
// reaches into a reference's internals; every interaction goes
// through this interface, so a reference backed by cgo and one backed
// by a second in-process cpu.Simulator are interchangeable.
type Reference interface {
	// StepOnce advances the reference by exactly one instruction.
	StepOnce() error

	// SyncFrom performs a full copy of the DUT's registers and memory
	// into the reference. cmd/rvdiff does not call it: it builds the
	// reference from the same config and ELF image as the DUT.
	SyncFrom(regs cpu.Snapshot, regions []MemoryRegion) error

	// SyncRegsFrom copies only the DUT's registers into the reference,
	// used on MMIO "skip".
	SyncRegsFrom(regs cpu.Snapshot) error

	// SyncMemory performs an incremental resync of one region after a
	// coordinator-driven memory mutation.
	SyncMemory(base uint32, data []byte) error

	// ReadCSR returns the reference's current value for a CSR number,
	// for the coordinator's masked comparison.
	ReadCSR(csr uint32) uint32

	// Snapshot returns the reference's current PC and GPRs.
	Snapshot() cpu.Snapshot

	// Close releases any resources the reference holds (an FFI
	// context, an open library handle). In-process references are a
	// no-op.
	Close() error
}

// MemoryRegion is the minimal shape SyncFrom needs to bulk-copy a
// guest memory region into a reference: a guest base address and the
// bytes backing it.
type MemoryRegion struct {
	Base uint32
	Data []byte
}
