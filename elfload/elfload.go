/*
 * rv32diff - ELF32 image loader
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

// Package elfload loads an ELF32 image's PT_LOAD segments into the
// bus-backed regions that back them, and reports the entry point.
package elfload

import (
	"debug/elf"
	"fmt"

	"github.com/rcornwell/rv32diff/bus"
)

// Image is the result of a successful load: the program's entry point
// and the number of bytes written across all PT_LOAD segments.
type Image struct {
	Entry uint32
	Bytes int
}

// Load reads an ELF32 file from path and writes every PT_LOAD
// segment's file-backed bytes into b at its physical address,
// returning the image's entry point. It rejects non-32-bit,
// non-RISC-V, or non-executable ELF files outright rather than
// guessing at a best-effort interpretation: a difftest session needs
// byte-exact agreement between the DUT and the reference on what was
// loaded, so a silently-wrong load is worse than a refused one.
func Load(b *bus.Bus, path string) (Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("elfload: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return Image{}, fmt.Errorf("elfload: %s is not a 32-bit ELF", path)
	}
	if f.Machine != elf.EM_RISCV {
		return Image{}, fmt.Errorf("elfload: %s is not a RISC-V ELF", path)
	}
	if f.Type != elf.ET_EXEC {
		return Image{}, fmt.Errorf("elfload: %s is not an executable ELF", path)
	}

	img := Image{Entry: uint32(f.Entry)}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return Image{}, fmt.Errorf("elfload: reading PT_LOAD segment at %#x: %w", prog.Paddr, err)
		}
		if fault := b.WriteBytes(uint32(prog.Paddr), data); fault != nil {
			return Image{}, fmt.Errorf("elfload: writing segment at %#x (%d bytes): %w", prog.Paddr, len(data), fault)
		}
		img.Bytes += len(data)
	}
	return img, nil
}
