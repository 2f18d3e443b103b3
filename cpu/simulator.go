/*
 * rv32diff - DUT simulator: fetch/decode/execute step loop over the I-cache
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

// DefaultBatchSize is how many instructions StepN runs between
// cooperative-cancellation checks.
const DefaultBatchSize = 1024

// Tracer is fed every successful retirement. The step loop re-reads
// the raw instruction word from the bus for the trace sink even on an
// I-cache hit, so the hook lives here; rendering is a CLI concern.
type Tracer interface {
	OnRetire(pc uint32, word uint32, retired uint64)
}

// Simulator is the DUT: a register file, a bus, an I-cache, and the
// retired-instruction counter, stepped one instruction (or a bounded
// batch) at a time.
type Simulator struct {
	Reg     *RegFile
	Bus     *bus.Bus
	ICache  *ICache
	Profile ISAProfile
	Retired uint64

	// Tracer, if non-nil, is notified after every successful
	// retirement. Cancel, if non-nil, is consulted by StepN at batch
	// boundaries.
	Tracer Tracer
	Cancel *CancelFlag
}

// NewSimulator constructs a DUT over an existing bus, reset to resetPC
// with fresh register and I-cache state.
func NewSimulator(b *bus.Bus, profile ISAProfile, resetPC uint32, icacheSize int) *Simulator {
	return &Simulator{
		Reg:     NewRegFile(resetPC, profile),
		Bus:     b,
		ICache:  NewICache(icacheSize),
		Profile: profile,
	}
}

// FlushState invalidates both caches and is called by any
// coordinator-driven write of registers or bus memory: after this
// call, the next fetch and the next memory access both refill from
// scratch.
func (s *Simulator) FlushState() {
	s.ICache.Flush()
	s.Bus.FlushDcache()
}

// StepOnce retires (or faults on) exactly one instruction:
//
//  1. Fetch the decoded instruction for the current PC, consulting
//     the I-cache first.
//  2. If a tracer is attached, the raw instruction word is re-read
//     from the bus even on an I-cache hit, purely for the trace sink.
//  3. Execute it. On success (including ProgramExit), the retired
//     counter increments and PC advances. On IllegalInstruction or a
//     bus fault, neither happens and the error propagates.
func (s *Simulator) StepOnce() error {
	pc := s.Reg.PC

	decoded, hit := s.ICache.Lookup(pc)
	var word uint32
	needWord := !hit || s.Tracer != nil || decoded.Op == OpUnknown
	if needWord {
		w, fault := s.Bus.Read32(pc)
		if fault != nil {
			return fault
		}
		word = w
		if !hit {
			decoded = Decode(word, s.Profile)
			s.ICache.Fill(pc, decoded)
		}
	}

	nextPC, err := Execute(s.Reg, s.Bus, s.Profile, pc, word, decoded)
	if decoded.Op == OpFenceI {
		s.ICache.Flush()
	}

	if err != nil {
		if exit, ok := AsProgramExit(err); ok {
			s.Retired++
			s.Reg.PC = nextPC
			if s.Tracer != nil {
				s.Tracer.OnRetire(pc, word, s.Retired)
			}
			return exit
		}
		return err
	}

	s.Retired++
	s.Reg.PC = nextPC
	if s.Tracer != nil {
		s.Tracer.OnRetire(pc, word, s.Retired)
	}
	return nil
}

// StepN retires up to n instructions, stopping early on the first
// fault or when Cancel is observed set at a batch
// boundary. It returns the number of
// instructions actually retired during this call.
func (s *Simulator) StepN(n int) (int, error) {
	start := s.Retired
	remaining := n
	for remaining > 0 {
		if s.Cancel != nil && s.Cancel.IsSet() {
			return int(s.Retired - start), ErrInterrupted
		}
		batch := remaining
		if batch > DefaultBatchSize {
			batch = DefaultBatchSize
		}
		for i := 0; i < batch; i++ {
			if err := s.StepOnce(); err != nil {
				return int(s.Retired - start), err
			}
		}
		remaining -= batch
	}
	return int(s.Retired - start), nil
}
