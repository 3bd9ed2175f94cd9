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

import "fmt"

type (
	// A MalformedRecordError reports an alignment line with fewer
	// tab-separated fields than the filter needs to inspect.
	MalformedRecordError struct {
		LineNumber int64
		Line       string
		Fields     int
	}

	// A ParseError reports a field that should hold an integer but
	// doesn't.
	ParseError struct {
		LineNumber int64
		Line       string
		Field      string
		Value      string
		Err        error
	}

	// An IOError reports a failure reading from a line source or
	// writing to an output sink. IOErrors are always fatal.
	IOError struct {
		Op  string
		Err error
	}
)

func lineLocation(lineNumber int64) string {
	if lineNumber > 0 {
		return fmt.Sprintf(" in line %v", lineNumber)
	}
	return ""
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed SAM alignment%v: %v tab-separated fields, at least %v needed: %q",
		lineLocation(e.LineNumber), e.Fields, minFields, e.Line)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %v value %q in SAM alignment%v: %v",
		e.Field, e.Value, lineLocation(e.LineNumber), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%v failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func setLineNumber(err error, lineNumber int64) {
	switch e := err.(type) {
	case *MalformedRecordError:
		e.LineNumber = lineNumber
	case *ParseError:
		e.LineNumber = lineNumber
	}
}
