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
	"io"
	"log"
)

type (
	// A LineSource delivers lines one at a time, without their line
	// terminators. A *bufio.Scanner is a LineSource.
	LineSource interface {
		Scan() bool
		Text() string
		Err() error
	}

	// A LineFilter copies the header lines and the alignment lines
	// that satisfy its Criterion from a LineSource to an io.Writer.
	LineFilter struct {
		Criterion
		Policy MalformedPolicy
	}

	// Summary counts what a LineFilter has seen.
	Summary struct {
		Lines   int64 // all lines read
		Headers int64 // header lines
		Records int64 // well-formed alignment lines
		Kept    int64 // lines written, headers included
		Skipped int64 // malformed lines dropped by the Skip policy
	}
)

// NewLineFilter returns a LineFilter for the given criterion and
// malformed line policy.
func NewLineFilter(criterion Criterion, policy MalformedPolicy) *LineFilter {
	return &LineFilter{Criterion: criterion, Policy: policy}
}

func (s Summary) String() string {
	return fmt.Sprintf("%v lines read, %v header lines, %v alignments, %v lines kept, %v malformed lines skipped",
		s.Lines, s.Headers, s.Records, s.Kept, s.Skipped)
}

// account updates the summary for the next line, and reports whether
// the line is to be written. A non-nil error means the run must stop.
func (f *LineFilter) account(s *Summary, line string, keep bool, err error) (bool, error) {
	s.Lines++
	if err != nil {
		setLineNumber(err, s.Lines)
		if f.Policy == Abort {
			return false, err
		}
		log.Printf("Warning: skipping %v.\n", err)
		s.Skipped++
		return false, nil
	}
	if IsHeaderLine(line) {
		s.Headers++
	} else {
		s.Records++
	}
	if keep {
		s.Kept++
	}
	return keep, nil
}

func writeLine(out io.Writer, buf []byte, line string) ([]byte, error) {
	buf = append(append(buf[:0], line...), '\n')
	if _, err := out.Write(buf); err != nil {
		return buf, &IOError{Op: "writing SAM output", Err: err}
	}
	return buf, nil
}

/*
Run reads all lines from the source, in order, and writes the ones to
keep to out, each followed by a newline. It stops at the end of the
source, at the first write error, or, with the Abort policy, at the
first malformed line.

The returned summary is valid even if an error is returned.
*/
func (f *LineFilter) Run(lines LineSource, out io.Writer) (summary Summary, err error) {
	var buf []byte
	for lines.Scan() {
		line := lines.Text()
		keep, err := f.Keep(line)
		if keep, err = f.account(&summary, line, keep, err); err != nil {
			return summary, err
		}
		if keep {
			if buf, err = writeLine(out, buf, line); err != nil {
				return summary, err
			}
		}
	}
	if err := lines.Err(); err != nil {
		return summary, &IOError{Op: "reading SAM input", Err: err}
	}
	return summary, nil
}
