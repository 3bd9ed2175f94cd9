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
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/exascience/elalign/internal"
	"github.com/exascience/elalign/sam"
	"github.com/exascience/elalign/utils"
)

// ProgramMessage is the first line printed when the elalign binary is
// called.
var ProgramMessage string

func init() {
	ProgramMessage = fmt.Sprint(
		"\n", utils.ProgramName, " version ", utils.ProgramVersion,
		" compiled with ", runtime.Version(),
		" - see ", utils.ProgramURL, " for more information.\n",
	)
}

// HelpMessage is printed to show the --help flag
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

// runID identifies one invocation in log files.
var runID = uuid.New()

func getFilename(s, help string) string {
	switch s {
	case "-h", "--h", "-help", "--help":
		fmt.Fprint(os.Stderr, help)
		os.Exit(0)
	default:
		if strings.HasPrefix(s, "-") {
			log.Println("Filename(s) in command line missing.")
			fmt.Fprint(os.Stderr, help)
			os.Exit(1)
		}
	}
	return s
}

func parseFlags(flags flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(ioutil.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

func logCheckFile(parameter, format string, v ...interface{}) {
	if parameter != "" {
		log.Printf(format+" for command line parameter %v.\n", append(v, parameter)...)
	} else {
		log.Printf(format+".\n", v...)
	}
}

func checkExist(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if filename == sam.StdinName {
		return true
	}
	if _, err := os.Stat(filename); err == nil {
		return true
	} else if os.IsNotExist(err) {
		logCheckFile(parameter, "Error: File %v does not exist", filename)
		return false
	} else if os.IsPermission(err) {
		logCheckFile(parameter, "Error: No permission to read file %v", filename)
		return false
	} else {
		logCheckFile(parameter, "Error %v when trying to access file %v", err, filename)
		return false
	}
}

func checkCreate(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if filename == sam.StdoutName {
		return true
	}
	if _, err := os.Stat(filename); err == nil {
		// Assume that the file has been written by previous elAlign runs, and can be overwritten.
		return true
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		err = ioutil.WriteFile(filename, nil, 0666)
	}
	if err != nil {
		if os.IsPermission(err) {
			logCheckFile(parameter, "Error: No permission to create file %v", filename)
		} else {
			logCheckFile(parameter, "Error %v when trying to create file %v", err, filename)
		}
		return false
	}
	_ = os.Remove(filename)
	return true
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/elalign/elalign-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// setLogOutput copies everything written to standard error, including
// the output of the aligner, to a fresh log file below path.
func setLogOutput(path string) {
	if path == "" {
		return
	}
	fullPath := filepath.Join(path, createLogFilename())
	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		log.Panic(err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		log.Panic(err)
	}
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		log.Panic(err)
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		log.Panic(err)
	}

	multi := io.MultiWriter(f, ferr)

	log.SetOutput(multi)
	log.Println("Created log file at", fullPath)
	log.Println("Run:", runID)
	log.Println("Command line:", os.Args)
}

func timedRun(timed bool, msg string, f func() error) error {
	if timed {
		log.Println(msg)
		start := time.Now()
		defer func() {
			end := time.Now()
			log.Println("Elapsed time: ", end.Sub(start))
		}()
	}
	return f()
}

// filterOptions are the command line parameters shared by all
// commands that filter SAM lines.
type filterOptions struct {
	referenceName string
	minQuality    int
	malformed     string
	nrOfThreads   int
	timed         bool
	logPath       string
}

const filterOptionsHelp = "[--reference-name name]\n" +
	"[--min-quality mapping-quality]\n" +
	"[--malformed abort|skip]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

func (options *filterOptions) addFlags(flags *flag.FlagSet) {
	flags.StringVar(&options.referenceName, "reference-name", "chr7", "output only alignments that mapped to the given reference sequence")
	flags.IntVar(&options.minQuality, "min-quality", 10, "output only alignments with a mapping quality greater than the given value")
	flags.StringVar(&options.malformed, "malformed", sam.Abort.String(), "abort or skip on malformed alignment lines")
	flags.IntVar(&options.nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&options.timed, "timed", false, "measure the runtime")
	flags.StringVar(&options.logPath, "log-path", "", "write log files to the specified directory")
}

// lineFilter checks the options, and returns the corresponding
// LineFilter, or nil if a check failed. Failed checks are logged.
func (options *filterOptions) lineFilter() *sam.LineFilter {
	sanityChecksFailed := false
	if options.referenceName == "" {
		sanityChecksFailed = true
		log.Println("Error: Empty reference-name.")
	}
	if options.minQuality < -1 || options.minQuality > 255 {
		sanityChecksFailed = true
		log.Println("Error: Invalid min-quality: ", options.minQuality)
	}
	policy, err := sam.ParseMalformedPolicy(options.malformed)
	if err != nil {
		sanityChecksFailed = true
		log.Println("Error:", err)
	}
	if options.nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", options.nrOfThreads)
	}
	if sanityChecksFailed {
		return nil
	}
	return sam.NewLineFilter(sam.Criterion{
		ReferenceName: options.referenceName,
		MinQuality:    options.minQuality,
	}, policy)
}

func (options *filterOptions) format(command *bytes.Buffer) {
	fmt.Fprint(command, " --reference-name ", options.referenceName)
	fmt.Fprint(command, " --min-quality ", options.minQuality)
	fmt.Fprint(command, " --malformed ", options.malformed)
	if options.nrOfThreads > 0 {
		fmt.Fprint(command, " --nr-of-threads ", options.nrOfThreads)
	}
	if options.timed {
		fmt.Fprint(command, " --timed")
	}
	if options.logPath != "" {
		fmt.Fprint(command, " --log-path ", options.logPath)
	}
}

// filterToFile runs the filter over the source, and commits the
// output file only if this succeeds.
func filterToFile(filter *sam.LineFilter, src *sam.LineReader, output string) (summary sam.Summary, err error) {
	if output != sam.StdoutName {
		if output, err = internal.FullPathname(output); err != nil {
			return summary, err
		}
		if err = os.MkdirAll(filepath.Dir(output), 0700); err != nil {
			return summary, err
		}
	}
	out, err := sam.Create(output)
	if err != nil {
		return summary, err
	}
	defer func() {
		nerr := out.Close()
		if err == nil {
			err = nerr
		}
	}()
	if summary, err = filter.RunPipeline(src, out); err != nil {
		return summary, err
	}
	return summary, out.Commit()
}
