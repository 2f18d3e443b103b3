/*
 * rv32diff - Interactive command prompt.
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
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/rv32diff/cpu"
)

// commands is the REPL's fixed verb table, used both for dispatch and
// for the liner completer.
var commands = []string{"step", "continue", "break", "clear", "trace", "regs", "mem", "write", "set", "quit", "help"}

func runREPL(s *session) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, partial) {
				out = append(out, c)
			}
		}
		return out
	})

	fmt.Println("rv32diff interactive session. Type 'help' for commands.")
	for {
		input, err := line.Prompt("rv32diff> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line: " + err.Error())
			return
		}
		line.AppendHistory(input)

		quit := dispatch(s, strings.Fields(input))
		if quit {
			return
		}
	}
}

func dispatch(s *session, fields []string) (quit bool) {
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "step":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		cmdStep(s, n)
	case "continue":
		cmdContinue(s)
	case "break":
		if len(fields) < 2 {
			fmt.Println("usage: break <addr>")
			return false
		}
		cmdBreak(s, fields[1])
	case "clear":
		if len(fields) < 2 {
			fmt.Println("usage: clear <addr>")
			return false
		}
		cmdClear(s, fields[1])
	case "trace":
		if s.toggleTrace() {
			fmt.Println("tracing on")
		} else {
			fmt.Println("tracing off")
		}
	case "regs":
		cmdRegs(s)
	case "mem":
		if len(fields) < 2 {
			fmt.Println("usage: mem <addr> [count]")
			return false
		}
		cmdMem(s, fields[1:])
	case "write":
		if len(fields) < 3 {
			fmt.Println("usage: write <addr> <word>")
			return false
		}
		cmdWrite(s, fields[1], fields[2])
	case "set":
		if len(fields) < 3 {
			fmt.Println("usage: set <pc|reg> <value>")
			return false
		}
		cmdSet(s, fields[1], fields[2])
	case "quit", "exit":
		return true
	case "help":
		for _, c := range commands {
			fmt.Println("  " + c)
		}
	default:
		fmt.Println("unknown command: " + fields[0])
	}
	return false
}

func cmdStep(s *session, n int) {
	for i := 0; i < n; i++ {
		err := s.step()
		if err == nil {
			continue
		}
		reportStop(err)
		return
	}
}

func cmdContinue(s *session) {
	for {
		if s.interrupted() {
			fmt.Printf("interrupted at %#010x\n", s.coord.DUT.Reg.PC)
			return
		}
		err := s.step()
		if err != nil {
			reportStop(err)
			return
		}
		if s.atBreakpoint() {
			fmt.Printf("breakpoint hit at %#010x\n", s.coord.DUT.Reg.PC)
			return
		}
	}
}

func cmdBreak(s *session, addrStr string) {
	addr, err := parseAddr(addrStr)
	if err != nil {
		fmt.Println("bad address: " + err.Error())
		return
	}
	s.setBreakpoint(addr)
	fmt.Printf("breakpoint set at %#010x\n", addr)
}

func cmdClear(s *session, addrStr string) {
	addr, err := parseAddr(addrStr)
	if err != nil {
		fmt.Println("bad address: " + err.Error())
		return
	}
	s.clearBreakpoint(addr)
	fmt.Printf("breakpoint cleared at %#010x\n", addr)
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	return uint32(v), err
}

func reportStop(err error) {
	if exit, ok := cpu.AsProgramExit(err); ok {
		if exit.Pass {
			fmt.Println("program exited: pass")
		} else {
			fmt.Printf("program exited: fail (code %d)\n", exit.Code)
		}
		return
	}
	if mismatch, ok := asMismatch(err); ok {
		fmt.Println(mismatch.Error())
		return
	}
	fmt.Println("stopped: " + err.Error())
}

func cmdRegs(s *session) {
	snap := s.coord.DUT.Reg.Snapshot()
	fmt.Printf("pc  = %#010x\n", snap.PC)
	for i := 0; i < 32; i += 4 {
		fmt.Printf("%-4s=%#010x  %-4s=%#010x  %-4s=%#010x  %-4s=%#010x\n",
			cpu.GPRNames[i], snap.GPR[i],
			cpu.GPRNames[i+1], snap.GPR[i+1],
			cpu.GPRNames[i+2], snap.GPR[i+2],
			cpu.GPRNames[i+3], snap.GPR[i+3])
	}
}

func cmdMem(s *session, args []string) {
	addr, err := parseAddr(args[0])
	if err != nil {
		fmt.Println("bad address: " + err.Error())
		return
	}
	count := 16
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			count = v
		}
	}
	// A console read of a device register must not leak an MMIO hit
	// into the next difftest step's skip decision.
	defer s.coord.DUT.Bus.MMIOTouched()
	for i := 0; i < count; i += 4 {
		v, fault := s.coord.DUT.Bus.Read32(addr + uint32(i))
		if fault != nil {
			fmt.Println("fault: " + fault.Error())
			return
		}
		fmt.Printf("%#010x: %#010x\n", addr+uint32(i), v)
	}
}

// cmdWrite stores one word into DUT memory, flushes the DUT's caches,
// and resyncs the mutated bytes to the reference so the next compared
// step starts from identical memory on both sides.
func cmdWrite(s *session, addrStr, valStr string) {
	addr, err := parseAddr(addrStr)
	if err != nil {
		fmt.Println("bad address: " + err.Error())
		return
	}
	val, err := parseAddr(valStr)
	if err != nil {
		fmt.Println("bad value: " + err.Error())
		return
	}
	if s.coord.DUT.Bus.IsDevice(addr) {
		fmt.Println("refusing to write a device register from the console")
		return
	}
	if fault := s.coord.DUT.Bus.Write32(addr, val); fault != nil {
		fmt.Println("fault: " + fault.Error())
		return
	}
	s.coord.DUT.FlushState()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	if err := s.coord.SyncMemory(addr, buf[:]); err != nil {
		fmt.Println("reference sync failed: " + err.Error())
		return
	}
	fmt.Printf("%#010x <- %#010x\n", addr, val)
}

// cmdSet overwrites the DUT's PC or one GPR, flushes the DUT's caches,
// and copies the full register state into the reference.
func cmdSet(s *session, reg, valStr string) {
	val, err := parseAddr(valStr)
	if err != nil {
		fmt.Println("bad value: " + err.Error())
		return
	}
	rf := s.coord.DUT.Reg
	if reg == "pc" {
		rf.PC = val
	} else if i, ok := gprIndex(reg); ok {
		rf.SetGPR(i, val)
	} else {
		fmt.Println("unknown register: " + reg)
		return
	}
	s.coord.DUT.FlushState()
	if err := s.coord.Ref.SyncRegsFrom(rf.Snapshot()); err != nil {
		fmt.Println("reference sync failed: " + err.Error())
		return
	}
	fmt.Printf("%s <- %#010x\n", reg, val)
}

// gprIndex resolves an ABI name ("sp", "a0") or an xN form to a GPR
// index.
func gprIndex(name string) (uint32, bool) {
	for i, n := range cpu.GPRNames {
		if n == name {
			return uint32(i), true
		}
	}
	if strings.HasPrefix(name, "x") {
		if v, err := strconv.ParseUint(name[1:], 10, 5); err == nil {
			return uint32(v), true
		}
	}
	return 0, false
}
