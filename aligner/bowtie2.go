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

// Package aligner runs an external short-read aligner, and exposes
// the SAM text on its standard output as a stream of lines.
package aligner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/exascience/elalign/sam"
)

// DefaultProgram is the aligner that is run unless another program is
// configured. It must be visible in the directories named by the PATH
// environment variable.
const DefaultProgram = "bowtie2"

// Alignment modes of bowtie2.
const (
	Local    = "local"
	EndToEnd = "end-to-end"
)

// Bowtie2 describes a bowtie2 run on unpaired reads.
type Bowtie2 struct {
	Program   string   // executable, DefaultProgram if empty
	Index     string   // basename of the bowtie2 index (-x)
	Reads     string   // unpaired FASTQ file (-U)
	Mode      string   // Local or EndToEnd, Local if empty
	Threads   int      // number of aligner threads (-p), bowtie2's default if 0
	Quiet     bool     // pass --quiet
	ExtraArgs []string // appended as is
}

// NewBowtie2 returns a Bowtie2 run that aligns the reads against the
// index in local mode, quietly, as the original pipeline script did.
func NewBowtie2(index, reads string) *Bowtie2 {
	return &Bowtie2{
		Program: DefaultProgram,
		Index:   index,
		Reads:   reads,
		Mode:    Local,
		Quiet:   true,
	}
}

func (b *Bowtie2) program() string {
	if b.Program == "" {
		return DefaultProgram
	}
	return b.Program
}

// Args returns the command line arguments for the aligner, without
// the program name.
func (b *Bowtie2) Args() ([]string, error) {
	if b.Index == "" {
		return nil, fmt.Errorf("missing index for %v", b.program())
	}
	if b.Reads == "" {
		return nil, fmt.Errorf("missing reads for %v", b.program())
	}
	var args []string
	if b.Quiet {
		args = append(args, "--quiet")
	}
	if b.Threads > 0 {
		args = append(args, "-p", strconv.Itoa(b.Threads))
	}
	args = append(args, "-x", b.Index, "-U", b.Reads)
	switch b.Mode {
	case Local, "":
		args = append(args, "--local")
	case EndToEnd:
		args = append(args, "--end-to-end")
	default:
		return nil, fmt.Errorf("invalid %v alignment mode %v, must be %v or %v", b.program(), b.Mode, Local, EndToEnd)
	}
	return append(args, b.ExtraArgs...), nil
}

// Start launches the aligner. Its standard error is passed through to
// os.Stderr, and its standard output is available from the Lines
// method of the returned Process. The process is killed when ctx is
// done before it finishes on its own.
func (b *Bowtie2) Start(ctx context.Context) (*Process, error) {
	args, err := b.Args()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, b.program(), args...)
	cmd.Stderr = os.Stderr
	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Program: b.program(), Err: err}
	}
	if err = cmd.Start(); err != nil {
		return nil, &LaunchError{Program: b.program(), Err: err}
	}
	return &Process{cmd: cmd, lines: sam.NewLineReader(outPipe)}, nil
}
