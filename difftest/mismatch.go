/*
 * rv32diff - Difftest mismatch reporting
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

package difftest

import (
	"fmt"
	"strings"
)

// Mismatch is one differing register: its name, the DUT's value,
// and the reference's value.
type Mismatch struct {
	Name string
	DUT  uint32
	Ref  uint32
}

// MismatchError reports that the coordinator
// detected architectural divergence between the DUT and the
// reference after a compared step.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "difftest mismatch (%d register(s)):", len(e.Mismatches))
	for _, m := range e.Mismatches {
		fmt.Fprintf(&b, "\n  %-10s dut=%#010x ref=%#010x", m.Name, m.DUT, m.Ref)
	}
	return b.String()
}

// RefError wraps a reference-simulator-reported failure, typically
// surfaced by an FFI-backed reference.
type RefError struct {
	Detail string
}

func (e *RefError) Error() string {
	return "reference simulator error: " + e.Detail
}
