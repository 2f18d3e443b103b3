/*
 * rv32diff - Session wiring: bus, devices, DUT, reference, difftest
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

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rcornwell/rv32diff/bus"
	"github.com/rcornwell/rv32diff/config"
	"github.com/rcornwell/rv32diff/cpu"
	"github.com/rcornwell/rv32diff/device"
	"github.com/rcornwell/rv32diff/difftest"
	"github.com/rcornwell/rv32diff/elfload"
	"github.com/rcornwell/rv32diff/internal/rvlog"
	"github.com/rcornwell/rv32diff/mem"
)

// traceLogger implements cpu.Tracer by writing one slog record per
// retired instruction. The session attaches one to the DUT only when
// -t was passed (or later through the REPL's trace command); otherwise
// the DUT's Tracer stays nil.
type traceLogger struct {
	log *slog.Logger
}

func (t *traceLogger) OnRetire(pc, word uint32, retired uint64) {
	t.log.Debug("retire", "n", retired, "pc", fmt.Sprintf("%#x", pc), "word", fmt.Sprintf("%#x", word))
}

// session owns the DUT, the in-process golden reference, and the
// difftest coordinator driving them in lock-step. It also holds the
// DUT's own CLINT timer and test finisher; the reference bus has
// separate instances of both, and only the DUT's CLINT is ticked.
type session struct {
	coord       *difftest.Coordinator
	dutClint    *device.CLINT
	finisher    *device.TestFinisher
	cancel      *cpu.CancelFlag
	instrCount  uint64
	breakpoints map[uint32]bool
}

func newSession(configPath, elfPath string, trace bool, cancel *cpu.CancelFlag) (*session, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("rvdiff: opening config: %w", err)
	}
	defer f.Close()

	sess, err := config.ParseSessionFile(f)
	if err != nil {
		return nil, fmt.Errorf("rvdiff: %w", err)
	}

	dcacheSize := sess.DcacheSize
	if dcacheSize == 0 {
		dcacheSize = bus.DefaultDcacheSize
	}
	icacheSize := sess.IcacheSize
	if icacheSize == 0 {
		icacheSize = cpu.DefaultICacheSize
	}

	dutBus, dutClint, dutFinisher, err := buildBus(sess, dcacheSize)
	if err != nil {
		return nil, err
	}
	// The reference bus gets its own CLINT/finisher instances, but only
	// the DUT's are ever ticked or polled: see session.step's doc comment.
	refBus, _, _, err := buildBus(sess, dcacheSize)
	if err != nil {
		return nil, err
	}

	profile := cpu.DefaultISAProfile

	entry := sess.Entry
	if elfPath != "" {
		img, err := elfload.Load(dutBus, elfPath)
		if err != nil {
			return nil, err
		}
		if _, err := elfload.Load(refBus, elfPath); err != nil {
			return nil, err
		}
		entry = img.Entry
	} else if !sess.HasEntry {
		return nil, fmt.Errorf("rvdiff: session config has no entry and no -e ELF was given")
	}

	dutSim := cpu.NewSimulator(dutBus, profile, entry, icacheSize)
	refSim := cpu.NewSimulator(refBus, profile, entry, icacheSize)

	if trace {
		dutSim.Tracer = &traceLogger{log: rvlog.Module("trace")}
	}
	dutSim.Cancel = cancel

	rvlog.Module("session").Info("session ready",
		"regions", len(sess.Regions), "devices", len(sess.Devices),
		"entry", fmt.Sprintf("%#x", entry))

	golden := difftest.NewGolden(refSim)
	coord := difftest.New(dutSim, golden)

	return &session{
		coord:       coord,
		dutClint:    dutClint,
		finisher:    dutFinisher,
		cancel:      cancel,
		breakpoints: make(map[uint32]bool),
	}, nil
}

// buildBus constructs one bus from a parsed session config: every
// region, then every device, keyed by name against the small built-in
// device catalog. The DUT and reference each get
// their own independently-built bus and device set, never a shared one.
func buildBus(sess config.Session, dcacheSize int) (*bus.Bus, *device.CLINT, *device.TestFinisher, error) {
	b := bus.New(dcacheSize)
	for _, r := range sess.Regions {
		b.AddRegion(mem.NewRegion(r.Name, r.Start, r.End))
	}

	var clint *device.CLINT
	var finisher *device.TestFinisher
	for _, d := range sess.Devices {
		switch d.Name {
		case "uart16550":
			b.AddDevice(d.Base, device.NewUART16550(os.Stdout))
		case "clint":
			clint = device.NewCLINT()
			b.AddDevice(d.Base, clint)
		case "test_finisher":
			finisher = device.NewTestFinisher()
			b.AddDevice(d.Base, finisher)
		default:
			return nil, nil, nil, fmt.Errorf("rvdiff: unknown device %q", d.Name)
		}
	}
	return b, clint, finisher, nil
}

// step advances the session by exactly one DUT instruction, ticking
// the DUT's CLINT afterward only when the coordinator step succeeded,
// so mtime never advances on a faulted or mismatched step. A test-finisher write
// latched during the step surfaces as a ProgramExit, the same shape
// ebreak takes, so every caller handles both termination paths alike.
func (s *session) step() error {
	err := s.coord.Step()
	if err == nil && s.dutClint != nil {
		s.dutClint.Tick()
	}
	s.instrCount++
	if err == nil && s.finisher != nil {
		if fin, done := s.finisher.Take(); done {
			return &cpu.ProgramExit{Code: fin.Code, Pass: fin.Pass}
		}
	}
	return err
}

// interrupted reports and clears a pending cancellation request.
func (s *session) interrupted() bool {
	if s.cancel != nil && s.cancel.IsSet() {
		s.cancel.Clear()
		return true
	}
	return false
}

func (s *session) Close() error {
	return s.coord.Ref.Close()
}

// setBreakpoint and clearBreakpoint manage the REPL's PC breakpoint
// set; atBreakpoint reports whether the DUT is currently sitting on
// one (checked after each step, so a `continue` issued while already
// stopped on a breakpoint still makes forward progress).
func (s *session) setBreakpoint(pc uint32) {
	s.breakpoints[pc] = true
}

func (s *session) clearBreakpoint(pc uint32) {
	delete(s.breakpoints, pc)
}

func (s *session) atBreakpoint() bool {
	return s.breakpoints[s.coord.DUT.Reg.PC]
}

// toggleTrace flips instruction tracing on or off for the DUT, letting
// the REPL's `trace` command turn retirement logging on mid-session
// without having restarted with -t. Reports the new state.
func (s *session) toggleTrace() bool {
	if s.coord.DUT.Tracer != nil {
		s.coord.DUT.Tracer = nil
		return false
	}
	s.coord.DUT.Tracer = &traceLogger{log: rvlog.Module("trace")}
	return true
}

func runBatch(s *session) {
	for {
		if s.interrupted() {
			fmt.Printf("interrupted at %#010x after %d instructions\n", s.coord.DUT.Reg.PC, s.instrCount)
			os.Exit(2)
		}
		err := s.step()
		if err == nil {
			continue
		}
		if exit, ok := cpu.AsProgramExit(err); ok {
			reportFinish(s, exit.Pass, exit.Code)
		}
		fmt.Println("error: " + err.Error())
		os.Exit(1)
	}
}

func reportFinish(s *session, pass bool, code uint32) {
	if pass {
		fmt.Printf("PASS after %d instructions\n", s.instrCount)
		os.Exit(0)
	}
	fmt.Printf("FAIL (code %d) after %d instructions\n", code, s.instrCount)
	os.Exit(1)
}
