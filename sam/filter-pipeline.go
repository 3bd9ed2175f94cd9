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
	"io"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/pipeline"
)

const (
	minBatchSize = 4096
	maxBatchSize = 262144
)

type (
	lineError struct {
		index int
		err   error
	}

	// A lineBatch is a batch of lines from a LineReader, together
	// with the decisions of the filter on them.
	lineBatch struct {
		lines  []string
		keep   *bitset.BitSet
		errors []lineError
	}
)

// classifyLines returns a pargo pipeline.Filter that applies the
// criterion to slices of lines, and turns them into lineBatch values.
// Errors are only recorded here, and acted upon in input order by the
// node that writes the output.
func (f *LineFilter) classifyLines() pipeline.Filter {
	return pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		batch := &lineBatch{
			lines: lines,
			keep:  bitset.New(uint(len(lines))),
		}
		for i, line := range lines {
			switch keep, err := f.Keep(line); {
			case err != nil:
				batch.errors = append(batch.errors, lineError{i, err})
			case keep:
				batch.keep.Set(uint(i))
			}
		}
		return batch
	})
}

// writeLines returns a pargo pipeline.Filter that writes the lines
// marked in each lineBatch to out, and updates the summary. It must
// be used in a strictly ordered node.
func (f *LineFilter) writeLines(out io.Writer, summary *Summary) pipeline.Filter {
	return func(p *pipeline.Pipeline, _ pipeline.NodeKind, _ *int) (receiver pipeline.Receiver, _ pipeline.Finalizer) {
		var (
			buf  []byte
			done bool
		)
		receiver = func(_ int, data interface{}) interface{} {
			if done {
				return data
			}
			batch := data.(*lineBatch)
			errors := batch.errors
			for i, line := range batch.lines {
				var lerr error
				if len(errors) > 0 && errors[0].index == i {
					lerr = errors[0].err
					errors = errors[1:]
				}
				keep, err := f.account(summary, line, batch.keep.Test(uint(i)), lerr)
				if err == nil && keep {
					buf, err = writeLine(out, buf, line)
				}
				if err != nil {
					done = true
					p.SetErr(err)
					return data
				}
			}
			return data
		}
		return
	}
}

/*
RunPipeline has the same effect as Run, but expresses the filter as a
pargo pipeline: lines are fetched in batches, classified in parallel,
and written in their original order by a single strictly ordered
node. On machines with few cores, RunPipeline just calls Run.
*/
func (f *LineFilter) RunPipeline(src *LineReader, out io.Writer) (summary Summary, err error) {
	if runtime.GOMAXPROCS(0) <= 3 {
		return f.Run(src, out)
	}
	var p pipeline.Pipeline
	p.Source(src)
	p.SetVariableBatchSize(minBatchSize, maxBatchSize)
	p.Add(
		pipeline.LimitedPar(0, f.classifyLines()),
		pipeline.StrictOrd(f.writeLines(out, &summary)),
	)
	p.Run()
	if err = p.Err(); err != nil {
		if serr := src.Err(); serr != nil && err == serr {
			err = &IOError{Op: "reading SAM input", Err: err}
		}
		return summary, err
	}
	return summary, nil
}
