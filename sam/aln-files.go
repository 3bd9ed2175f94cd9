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
	"context"
	"io"
	"os"
)

// Long reads can make for very long SAM lines.
const (
	initialLineBufferSize = 64 * 1024
	maxLineLength         = 64 * 1024 * 1024
)

// A LineReader reads the lines of a SAM stream, either one at a time
// as a LineSource, or in batches as a pargo pipeline.Source.
type LineReader struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	data    []string
}

// NewLineReader returns a LineReader that reads from r.
func NewLineReader(r io.Reader) *LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBufferSize), maxLineLength)
	reader := &LineReader{scanner: scanner}
	if rc, ok := r.(io.ReadCloser); ok {
		reader.rc = rc
	}
	return reader
}

// Scan implements the method of the LineSource interface.
func (r *LineReader) Scan() bool {
	return r.scanner.Scan()
}

// Text implements the method of the LineSource interface.
func (r *LineReader) Text() string {
	return r.scanner.Text()
}

// Err implements the method of the LineSource and pipeline.Source
// interfaces.
func (r *LineReader) Err() error {
	return r.scanner.Err()
}

// Prepare implements the method of the pipeline.Source interface.
func (r *LineReader) Prepare(_ context.Context) int {
	return -1
}

// Fetch implements the method of the pipeline.Source interface.
func (r *LineReader) Fetch(size int) (fetched int) {
	if size <= 0 {
		size = minBatchSize
	}
	lines := make([]string, 0, size)
	for fetched < size && r.scanner.Scan() {
		lines = append(lines, r.scanner.Text())
		fetched++
	}
	if fetched == 0 {
		r.data = nil
	} else {
		r.data = lines
	}
	return fetched
}

// Data implements the method of the pipeline.Source interface.
func (r *LineReader) Data() interface{} {
	return r.data
}

// Close closes the underlying reader, unless it is os.Stdin or not
// an io.Closer.
func (r *LineReader) Close() error {
	if r.rc == nil || r.rc == os.Stdin {
		return nil
	}
	return r.rc.Close()
}
