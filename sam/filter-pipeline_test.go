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
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"testing"
)

var references = []string{"chr1", "chr3", "chr7", "chrX"}

func makeLargeSam(nofLines int, malformedAt ...int) string {
	var sb strings.Builder
	sb.WriteString("@HD\tVN:1.6\tSO:unsorted\n")
	for _, ref := range references {
		fmt.Fprintf(&sb, "@SQ\tSN:%v\tLN:1000000\n", ref)
	}
	malformed := make(map[int]bool)
	for _, i := range malformedAt {
		malformed[i] = true
	}
	for i := 0; i < nofLines; i++ {
		switch {
		case malformed[i]:
			fmt.Fprintf(&sb, "read%v\t0\n", i)
		case rand.Intn(1000) == 0:
			fmt.Fprintf(&sb, "@CO\tcomment %v\n", i)
		default:
			fmt.Fprintf(&sb, "read%v\t0\t%v\t%v\t%v\t50M\t*\t0\t0\tACGT\tIIII\n",
				i, references[rand.Intn(len(references))], rand.Intn(1000000), rand.Intn(43))
		}
	}
	return sb.String()
}

func withProcs(n int, f func()) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(n))
	f()
}

func compareRuns(t *testing.T, policy MalformedPolicy, input string) {
	t.Helper()
	filter := NewLineFilter(chr7, policy)
	var seqOut, parOut strings.Builder
	seqSummary, seqErr := filter.Run(bufio.NewScanner(strings.NewReader(input)), &seqOut)
	var parSummary Summary
	var parErr error
	withProcs(8, func() {
		parSummary, parErr = filter.RunPipeline(NewLineReader(strings.NewReader(input)), &parOut)
	})
	if fmt.Sprint(seqErr) != fmt.Sprint(parErr) {
		t.Errorf("errors differ: sequential %v, pipeline %v", seqErr, parErr)
	}
	if seqSummary != parSummary {
		t.Errorf("summaries differ: sequential %v, pipeline %v", seqSummary, parSummary)
	}
	if seqOut.String() != parOut.String() {
		t.Errorf("outputs differ: sequential %v bytes, pipeline %v bytes", seqOut.Len(), parOut.Len())
	}
}

func TestRunPipeline(t *testing.T) {
	compareRuns(t, Abort, makeLargeSam(100000))
}

func TestRunPipelineEmpty(t *testing.T) {
	compareRuns(t, Abort, "")
}

func TestRunPipelineAbort(t *testing.T) {
	input := makeLargeSam(100000, 70000, 90000)
	compareRuns(t, Abort, input)
	var out strings.Builder
	var err error
	withProcs(8, func() {
		_, err = NewLineFilter(chr7, Abort).RunPipeline(NewLineReader(strings.NewReader(input)), &out)
	})
	var merr *MalformedRecordError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	if merr.Line != "read70000\t0" {
		t.Errorf("pipeline did not report the first malformed line, but %q", merr.Line)
	}
}

func TestRunPipelineSkip(t *testing.T) {
	compareRuns(t, Skip, makeLargeSam(100000, 10, 50000, 99999))
}
