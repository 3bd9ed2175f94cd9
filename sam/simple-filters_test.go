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
	"errors"
	"strconv"
	"testing"
)

var chr7 = Criterion{ReferenceName: "chr7", MinQuality: 10}

func TestKeep(t *testing.T) {
	for _, test := range []struct {
		line string
		keep bool
	}{
		{"@HD\tVN:1.0\tSO:unsorted", true},
		{"@SQ\tSN:chr7\tLN:159345973", true},
		{"@", true},
		{"read1\t0\tchr7\t100\t15", true},
		{"read1\t0\tchr7\t100\t11\t50M\t*\t0\t0\tACGT\tIIII\tAS:i:-3", true},
		{"read1\t0\tchr7\t100\t10", false},
		{"read1\t0\tchr7\t100\t0", false},
		{"read2\t0\tchr3\t50\t20", false},
		{"read2\t0\tchr70\t50\t20", false},
		{"read2\t4\t*\t0\t255", false},
		{"read3\t0\tchr7\t30\t42 ", true},
	} {
		keep, err := chr7.Keep(test.line)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", test.line, err)
		} else if keep != test.keep {
			t.Errorf("Keep(%q) = %v, expected %v", test.line, keep, test.keep)
		}
	}
}

func TestKeepMalformed(t *testing.T) {
	for _, test := range []struct {
		line   string
		fields int
	}{
		{"", 0},
		{"read1", 1},
		{"read1\t0", 2},
		{"read1\t0\tchr7", 3},
		{"read1\t0\tchr7\t100", 4},
	} {
		keep, err := chr7.Keep(test.line)
		if keep {
			t.Errorf("malformed line %q kept", test.line)
		}
		var merr *MalformedRecordError
		if !errors.As(err, &merr) {
			t.Errorf("expected MalformedRecordError for %q, got %v", test.line, err)
			continue
		}
		if merr.Fields != test.fields {
			t.Errorf("expected %v fields for %q, got %v", test.fields, test.line, merr.Fields)
		}
	}
}

func TestKeepParseError(t *testing.T) {
	for _, line := range []string{
		"read1\t0\tchr7\t100\t",
		"read1\t0\tchr7\t100\thigh",
		"read1\t0\tchr7\t100\t1.5\t50M",
	} {
		keep, err := chr7.Keep(line)
		if keep {
			t.Errorf("line %q with invalid MAPQ kept", line)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected ParseError for %q, got %v", line, err)
			continue
		}
		if perr.Field != "MAPQ" {
			t.Errorf("expected MAPQ field in ParseError, got %v", perr.Field)
		}
		if !errors.Is(err, strconv.ErrSyntax) {
			t.Errorf("ParseError for %q does not wrap strconv.ErrSyntax: %v", line, err)
		}
	}
}

func TestParseMalformedPolicy(t *testing.T) {
	if p, err := ParseMalformedPolicy("abort"); err != nil || p != Abort {
		t.Error("abort not parsed")
	}
	if p, err := ParseMalformedPolicy("Skip"); err != nil || p != Skip {
		t.Error("Skip not parsed")
	}
	if _, err := ParseMalformedPolicy("ignore"); err == nil {
		t.Error("invalid policy accepted")
	}
	for _, p := range []MalformedPolicy{Abort, Skip} {
		if q, err := ParseMalformedPolicy(p.String()); err != nil || q != p {
			t.Errorf("policy %v does not round trip", p)
		}
	}
}
