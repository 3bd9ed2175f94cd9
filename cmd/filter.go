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
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/exascience/elalign/sam"
)

// FilterHelp is the help string for this command.
const FilterHelp = "\nfilter parameters:\n" +
	"elalign filter sam-file sam-output-file\n" +
	filterOptionsHelp

// Filter implements the elalign filter command, which applies the
// line filter to an existing SAM file.
func Filter() error {
	var options filterOptions

	var flags flag.FlagSet
	options.addFlags(&flags)

	parseFlags(flags, 4, FilterHelp)

	input := getFilename(os.Args[2], FilterHelp)
	output := getFilename(os.Args[3], FilterHelp)

	setLogOutput(options.logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	filter := options.lineFilter()
	if filter == nil {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, FilterHelp)
		os.Exit(1)
	}

	if options.nrOfThreads > 0 {
		runtime.GOMAXPROCS(options.nrOfThreads)
	}

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " filter ", input, " ", output)
	options.format(&command)

	// executing command

	log.Println("Executing command:\n", command.String())

	return timedRun(options.timed, "Filtering SAM lines.", func() (err error) {
		src, err := sam.Open(input)
		if err != nil {
			return err
		}
		defer func() {
			nerr := src.Close()
			if err == nil {
				err = nerr
			}
		}()
		summary, err := filterToFile(filter, src, output)
		log.Println("Filter", filter.Criterion, "-", summary)
		return err
	})
}
