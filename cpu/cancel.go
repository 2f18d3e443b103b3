/*
 * rv32diff - Cooperative cancellation flag
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

import "sync/atomic"

// CancelFlag is set asynchronously by the host (e.g. on a keyboard
// interrupt) and consulted by StepN at every batch boundary. It is
// passed in by reference at construction, the same as the tracer:
// there is no process-wide mutable state in this core.
type CancelFlag struct {
	flag atomic.Bool
}

// Set raises the flag; the next StepN batch boundary observes it.
func (c *CancelFlag) Set() { c.flag.Store(true) }

// Clear lowers the flag, e.g. before starting a new run.
func (c *CancelFlag) Clear() { c.flag.Store(false) }

// IsSet reports the flag's current value without clearing it.
func (c *CancelFlag) IsSet() bool { return c.flag.Load() }
