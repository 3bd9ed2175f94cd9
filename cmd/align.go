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

package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/exascience/elalign/aligner"
	"github.com/exascience/elalign/internal"
	"github.com/exascience/elalign/sam"
)

// AlignHelp is the help string for this command.
const AlignHelp = "\nalign parameters:\n" +
	"elalign [align] fastq-file\n" +
	"[--output sam-output-file]\n" +
	"[--index bowtie2-index]\n" +
	"[--aligner program]\n" +
	"[--mode local|end-to-end]\n" +
	"[--aligner-threads nr]\n" +
	filterOptionsHelp

// Align implements the elalign align command, which runs bowtie2 on
// a FASTQ file, and filters its output while it is being produced.
// The FASTQ file is expected at os.Args[offset].
func Align(offset int) error {
	var (
		options        filterOptions
		output         string
		index          string
		alignerProgram string
		mode           string
		alignerThreads int
	)

	var flags flag.FlagSet

	flags.StringVar(&output, "output", "", "SAM output file, by default the FASTQ file name with a .sam extension")
	flags.StringVar(&index, "index", "chr7", "basename of the bowtie2 index")
	flags.StringVar(&alignerProgram, "aligner", aligner.DefaultProgram, "bowtie2 executable")
	flags.StringVar(&mode, "mode", aligner.Local, "bowtie2 alignment mode, local or end-to-end")
	flags.IntVar(&alignerThreads, "aligner-threads", 0, "number of bowtie2 threads, by default the number of worker threads")
	options.addFlags(&flags)

	parseFlags(flags, offset+1, AlignHelp)

	input := getFilename(os.Args[offset], AlignHelp)
	if output == "" {
		output = internal.SamFilename(input)
	}

	setLogOutput(options.logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("--output", output) {
		sanityChecksFailed = true
	}
	if output == input {
		sanityChecksFailed = true
		log.Println("Error: The output file must differ from the input file", input)
	}
	if mode != aligner.Local && mode != aligner.EndToEnd {
		sanityChecksFailed = true
		log.Println("Error: Invalid mode: ", mode)
	}
	if alignerThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid aligner-threads: ", alignerThreads)
	}
	filter := options.lineFilter()
	if filter == nil {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, AlignHelp)
		os.Exit(1)
	}

	if options.nrOfThreads > 0 {
		runtime.GOMAXPROCS(options.nrOfThreads)
	}
	if alignerThreads == 0 {
		alignerThreads = runtime.GOMAXPROCS(0)
	}

	bowtie2 := aligner.NewBowtie2(index, input)
	bowtie2.Program = alignerProgram
	bowtie2.Mode = mode
	bowtie2.Threads = alignerThreads

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " align ", input, " --output ", output, " --index ", index)
	fmt.Fprint(&command, " --aligner ", alignerProgram, " --mode ", mode, " --aligner-threads ", alignerThreads)
	options.format(&command)

	// executing command

	log.Println("Executing command:\n", command.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return timedRun(options.timed, "Aligning reads and filtering SAM lines.", func() error {
		return alignAndFilter(ctx, bowtie2, filter, output)
	})
}

func alignAndFilter(ctx context.Context, bowtie2 *aligner.Bowtie2, filter *sam.LineFilter, output string) error {
	process, err := bowtie2.Start(ctx)
	if err != nil {
		return err
	}
	log.Println("Started", bowtie2.Program, "with process id", process.Pid())
	summary, err := filterToFile(filter, process.Lines(), output)
	log.Println("Filter", filter.Criterion, "-", summary)
	if err != nil {
		if status, kerr := process.Kill(); kerr == nil {
			log.Println("Stopped", bowtie2.Program, "-", status)
		}
		return err
	}
	status, err := process.Wait()
	if err != nil {
		return err
	}
	log.Println(bowtie2.Program, "finished -", status)
	if !status.Success() {
		return fmt.Errorf("%v failed with %v, %v only contains the lines produced before it stopped", bowtie2.Program, status, output)
	}
	return nil
}
