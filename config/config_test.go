/*
 * rv32diff - Config parser tests
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

package config

import (
	"strings"
	"testing"
)

func TestParseRegionSpecHex(t *testing.T) {
	r, err := ParseRegionSpec("ram@0x8000_0000:0x8000_2000")
	if err != nil {
		t.Fatalf("ParseRegionSpec: %v", err)
	}
	if r.Name != "ram" || r.Start != 0x8000_0000 || r.End != 0x8000_2000 {
		t.Errorf("got %+v", r)
	}
}

func TestParseRegionSpecDecimal(t *testing.T) {
	r, err := ParseRegionSpec("ram@0:8192")
	if err != nil {
		t.Fatalf("ParseRegionSpec: %v", err)
	}
	if r.Start != 0 || r.End != 8192 {
		t.Errorf("got %+v", r)
	}
}

func TestParseRegionSpecRejectsUnaligned(t *testing.T) {
	if _, err := ParseRegionSpec("ram@0:100"); err == nil {
		t.Fatal("expected error for non-page-aligned end")
	}
}

func TestParseRegionSpecRejectsBackwardsRange(t *testing.T) {
	if _, err := ParseRegionSpec("ram@0x2000:0x1000"); err == nil {
		t.Fatal("expected error for end <= start")
	}
}

func TestParseDeviceSpec(t *testing.T) {
	d, err := ParseDeviceSpec("uart16550@0x1000_0000")
	if err != nil {
		t.Fatalf("ParseDeviceSpec: %v", err)
	}
	if d.Name != "uart16550" || d.Base != 0x1000_0000 {
		t.Errorf("got %+v", d)
	}
}

func TestParseSessionFile(t *testing.T) {
	src := `
# a session for a simple guest program
region ram@0x0:0x4000
device uart16550@0x1000_0000
device clint@0x200_0000
dcache-size 256
icache-size 1024
entry 0x1000
`
	sess, err := ParseSessionFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseSessionFile: %v", err)
	}
	if len(sess.Regions) != 1 || sess.Regions[0].Name != "ram" {
		t.Fatalf("regions = %+v", sess.Regions)
	}
	if len(sess.Devices) != 2 {
		t.Fatalf("devices = %+v", sess.Devices)
	}
	if sess.DcacheSize != 256 || sess.IcacheSize != 1024 {
		t.Errorf("cache sizes = %d, %d", sess.DcacheSize, sess.IcacheSize)
	}
	if !sess.HasEntry || sess.Entry != 0x1000 {
		t.Errorf("entry = %#x, hasEntry=%v", sess.Entry, sess.HasEntry)
	}
}

func TestParseSessionFileRejectsUnknownDirective(t *testing.T) {
	_, err := ParseSessionFile(strings.NewReader("bogus 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown directive")
	}
}

func TestParseSessionFileIgnoresBlankAndCommentLines(t *testing.T) {
	src := "\n# comment only\n   \nregion ram@0:4096\n"
	sess, err := ParseSessionFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseSessionFile: %v", err)
	}
	if len(sess.Regions) != 1 {
		t.Fatalf("regions = %+v", sess.Regions)
	}
}
