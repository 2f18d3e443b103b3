/*
 * rv32diff - Textual region/device specs and the session config file format
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

// Package config parses the textual region and device specs
// (`name@start:end`, `name@base`) and the line-oriented session
// config file built from them.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RegionSpec is a parsed `name@start:end`.
type RegionSpec struct {
	Name  string
	Start uint32
	End   uint32
}

// DeviceSpec is a parsed `name@base`.
type DeviceSpec struct {
	Name string
	Base uint32
}

// PageSize mirrors mem.PageSize; duplicated here rather than imported
// so this package stays free of a dependency on the simulation core.
const pageSize = 4096

// ParseRegionSpec parses `name@start:end`. start and end accept hex
// (`0x...`, optional `_` separators) or plain decimal; both must be
// page-aligned, and end must exceed start by at least one page.
func ParseRegionSpec(s string) (RegionSpec, error) {
	name, rest, ok := cut(s, "@")
	if !ok {
		return RegionSpec{}, fmt.Errorf("config: region spec %q missing '@'", s)
	}
	startStr, endStr, ok := cut(rest, ":")
	if !ok {
		return RegionSpec{}, fmt.Errorf("config: region spec %q missing ':'", s)
	}
	start, err := parseNumber(startStr)
	if err != nil {
		return RegionSpec{}, fmt.Errorf("config: region %q start: %w", s, err)
	}
	end, err := parseNumber(endStr)
	if err != nil {
		return RegionSpec{}, fmt.Errorf("config: region %q end: %w", s, err)
	}
	if end <= start {
		return RegionSpec{}, fmt.Errorf("config: region %q has end <= start", s)
	}
	if start%pageSize != 0 || end%pageSize != 0 {
		return RegionSpec{}, fmt.Errorf("config: region %q is not page-aligned", s)
	}
	if end-start < pageSize {
		return RegionSpec{}, fmt.Errorf("config: region %q is smaller than one page", s)
	}
	return RegionSpec{Name: name, Start: start, End: end}, nil
}

// ParseDeviceSpec parses `name@base`.
func ParseDeviceSpec(s string) (DeviceSpec, error) {
	name, baseStr, ok := cut(s, "@")
	if !ok {
		return DeviceSpec{}, fmt.Errorf("config: device spec %q missing '@'", s)
	}
	base, err := parseNumber(baseStr)
	if err != nil {
		return DeviceSpec{}, fmt.Errorf("config: device %q base: %w", s, err)
	}
	return DeviceSpec{Name: name, Base: base}, nil
}

func cut(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseNumber accepts hex (`0x...`, with optional `_` digit
// separators), a bare hex string with no prefix, or plain decimal.
func parseNumber(s string) (uint32, error) {
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	base := 10
	trimmed := s
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		trimmed = s[2:]
		base = 16
	default:
		if isBareHex(s) {
			base = 16
		}
	}
	v, err := strconv.ParseUint(trimmed, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return uint32(v), nil
}

// isBareHex reports whether s contains any hex digit outside 0-9,
// which means it can only be parsed as hexadecimal without a prefix
// (e.g. "80000000" is ambiguous and treated as decimal per the prefix
// rule above, but "8000abcd" is unambiguously hex).
func isBareHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			return true
		default:
			return false
		}
	}
	return false
}

// Session is a fully parsed session config file.
type Session struct {
	Regions    []RegionSpec
	Devices    []DeviceSpec
	DcacheSize int
	IcacheSize int
	Entry      uint32
	HasEntry   bool
}

// ParseSessionFile parses a line-oriented session config: `#` starts a
// comment to end of line, blank lines are ignored, and each
// non-comment line is one directive:
//
//	region <name@start:end>
//	device <name@base>
//	dcache-size <n>
//	icache-size <n>
//	entry <addr>
func ParseSessionFile(r io.Reader) (Session, error) {
	var s Session
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		directive := fields[0]
		args := fields[1:]
		if err := s.applyDirective(directive, args); err != nil {
			return Session{}, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Session{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func (s *Session) applyDirective(directive string, args []string) error {
	switch directive {
	case "region":
		if len(args) != 1 {
			return fmt.Errorf("region directive wants exactly one argument")
		}
		spec, err := ParseRegionSpec(args[0])
		if err != nil {
			return err
		}
		s.Regions = append(s.Regions, spec)
	case "device":
		if len(args) != 1 {
			return fmt.Errorf("device directive wants exactly one argument")
		}
		spec, err := ParseDeviceSpec(args[0])
		if err != nil {
			return err
		}
		s.Devices = append(s.Devices, spec)
	case "dcache-size":
		if len(args) != 1 {
			return fmt.Errorf("dcache-size directive wants exactly one argument")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("dcache-size: %w", err)
		}
		s.DcacheSize = n
	case "icache-size":
		if len(args) != 1 {
			return fmt.Errorf("icache-size directive wants exactly one argument")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("icache-size: %w", err)
		}
		s.IcacheSize = n
	case "entry":
		if len(args) != 1 {
			return fmt.Errorf("entry directive wants exactly one argument")
		}
		v, err := parseNumber(args[0])
		if err != nil {
			return fmt.Errorf("entry: %w", err)
		}
		s.Entry = v
		s.HasEntry = true
	default:
		return fmt.Errorf("unknown directive %q", directive)
	}
	return nil
}
