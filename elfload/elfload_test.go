/*
 * rv32diff - ELF32 loader tests
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

package elfload

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	busPkg "github.com/rcornwell/rv32diff/bus"
	"github.com/rcornwell/rv32diff/mem"
)

// buildELF32 hand-assembles a minimal, single-PT_LOAD-segment ELF32
// executable: just enough of the format for debug/elf to parse and
// for Load to exercise, without a real RISC-V toolchain in this tree.
func buildELF32(t *testing.T, entry uint32, segVaddr uint32, segData []byte) []byte {
	t.Helper()
	const ehsize = 52
	const phsize = 32

	var buf bytes.Buffer

	ident := make([]byte, 16)
	copy(ident, []byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0})
	buf.Write(ident)
	binary.Write(&buf, binary.LittleEndian, uint16(elf.ET_EXEC))
	binary.Write(&buf, binary.LittleEndian, uint16(elf.EM_RISCV))
	binary.Write(&buf, binary.LittleEndian, uint32(elf.EV_CURRENT))
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, uint32(ehsize)) // e_phoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	segOffset := uint32(ehsize + phsize)
	binary.Write(&buf, binary.LittleEndian, uint32(elf.PT_LOAD))
	binary.Write(&buf, binary.LittleEndian, segOffset)
	binary.Write(&buf, binary.LittleEndian, segVaddr)
	binary.Write(&buf, binary.LittleEndian, segVaddr) // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint32(len(segData)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(segData)))
	binary.Write(&buf, binary.LittleEndian, uint32(elf.PF_X|elf.PF_R))
	binary.Write(&buf, binary.LittleEndian, uint32(4)) // p_align

	buf.Write(segData)
	return buf.Bytes()
}

func TestLoadCopiesSegmentAndReportsEntry(t *testing.T) {
	segData := []byte{0x93, 0x00, 0x50, 0x00} // addi x1, x0, 5
	img := buildELF32(t, 0x1000, 0x1000, segData)

	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("writing test ELF: %v", err)
	}

	b := busPkg.New(busPkg.DefaultDcacheSize)
	b.AddRegion(mem.NewRegion("ram", 0, mem.PageSize*4))

	result, err := Load(b, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.Entry != 0x1000 {
		t.Errorf("Entry = %#x, want 0x1000", result.Entry)
	}
	if result.Bytes != len(segData) {
		t.Errorf("Bytes = %d, want %d", result.Bytes, len(segData))
	}

	got, fault := b.Read32(0x1000)
	if fault != nil {
		t.Fatalf("Read32: %v", fault)
	}
	want := binary.LittleEndian.Uint32(segData)
	if got != want {
		t.Errorf("loaded word = %#x, want %#x", got, want)
	}
}

func TestLoadRejectsWrongMachine(t *testing.T) {
	img := buildELF32(t, 0, 0x1000, []byte{0, 0, 0, 0})
	// Corrupt e_machine (offset 18, 2 bytes) to something that isn't EM_RISCV.
	binary.LittleEndian.PutUint16(img[18:20], uint16(elf.EM_X86_64))

	path := filepath.Join(t.TempDir(), "wrong.elf")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("writing test ELF: %v", err)
	}

	b := busPkg.New(busPkg.DefaultDcacheSize)
	b.AddRegion(mem.NewRegion("ram", 0, mem.PageSize*4))
	if _, err := Load(b, path); err == nil {
		t.Fatal("Load of an x86-64 ELF succeeded, want error")
	}
}
