// elAlign: streaming alignment filtering for elPrep pipelines.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package sam

import (
	"fmt"
	"strconv"
	"strings"
)

// HeaderSentinel is the first character of every SAM header line.
const HeaderSentinel = '@'

// Positions of the mandatory fields the filter inspects. See
// http://samtools.github.io/hts-specs/SAMv1.pdf - Section 1.4.
const (
	rnameField = 2
	mapqField  = 4
	minFields  = mapqField + 1
)

// A Criterion selects the alignments to keep: those that mapped to
// ReferenceName with a mapping quality strictly greater than
// MinQuality.
type Criterion struct {
	ReferenceName string
	MinQuality    int
}

func (c Criterion) String() string {
	return fmt.Sprintf("RNAME == %v and MAPQ > %v", c.ReferenceName, c.MinQuality)
}

// A MalformedPolicy determines what happens to lines that have too
// few fields, or a non-numeric mapping quality.
type MalformedPolicy int

const (
	// Abort stops filtering at the first malformed line, and reports
	// it as an error.
	Abort MalformedPolicy = iota

	// Skip logs and drops malformed lines.
	Skip
)

func (p MalformedPolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("MalformedPolicy(%d)", int(p))
	}
}

// ParseMalformedPolicy parses "abort" or "skip".
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(s) {
	case "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	default:
		return Abort, fmt.Errorf("unknown malformed line policy %v, must be abort or skip", s)
	}
}

// IsHeaderLine returns true if the line starts with HeaderSentinel.
func IsHeaderLine(line string) bool {
	return len(line) > 0 && line[0] == HeaderSentinel
}

/*
Keep tells whether a line satisfies the criterion. Header lines are
always kept. Only the first five fields of an alignment line are
scanned; the rest of the line is never looked at.
*/
func (c Criterion) Keep(line string) (bool, error) {
	if IsHeaderLine(line) {
		return true, nil
	}
	if len(line) == 0 {
		return false, &MalformedRecordError{Line: line}
	}
	var sc StringScanner
	sc.Reset(line)
	var rname, mapq string
	for field := 0; field < minFields; field++ {
		value, found := sc.ReadField()
		switch field {
		case rnameField:
			rname = value
		case mapqField:
			mapq = value
		}
		if !found && field < mapqField {
			return false, &MalformedRecordError{Line: line, Fields: field + 1}
		}
	}
	quality, err := strconv.Atoi(strings.TrimSpace(mapq))
	if err != nil {
		return false, &ParseError{Line: line, Field: "MAPQ", Value: mapq, Err: err}
	}
	return rname == c.ReferenceName && quality > c.MinQuality, nil
}
