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

package aligner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/exascience/elalign/sam"
)

type (
	// A LaunchError reports that the aligner could not be started,
	// for example because the program cannot be found.
	LaunchError struct {
		Program string
		Err     error
	}

	// ExitStatus is the termination state of the aligner.
	ExitStatus struct {
		Exited bool   // the process exited normally, with Code
		Code   int    // exit code, -1 if the process did not exit normally
		Signal string // name of the terminating signal, if any
	}

	// A Process is a running aligner.
	Process struct {
		cmd   *exec.Cmd
		lines *sam.LineReader
	}
)

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %v: %v", e.Program, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Success is true if the process exited normally with exit code 0.
func (s ExitStatus) Success() bool {
	return s.Exited && s.Code == 0
}

func (s ExitStatus) String() string {
	switch {
	case s.Exited:
		return fmt.Sprintf("exit status %v", s.Code)
	case s.Signal != "":
		return fmt.Sprintf("terminated by signal %v", s.Signal)
	default:
		return "unknown exit status"
	}
}

func exitStatus(state *os.ProcessState) ExitStatus {
	if state == nil {
		return ExitStatus{Code: -1}
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		switch status := unix.WaitStatus(ws); {
		case status.Exited():
			return ExitStatus{Exited: true, Code: status.ExitStatus()}
		case status.Signaled():
			return ExitStatus{Code: -1, Signal: unix.SignalName(status.Signal())}
		}
	}
	return ExitStatus{Exited: state.Exited(), Code: state.ExitCode()}
}

// Lines returns the standard output of the aligner as a line stream.
// It must be read until the end before Wait is called.
func (p *Process) Lines() *sam.LineReader {
	return p.lines
}

// Pid returns the process id of the aligner.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Wait waits for the aligner to finish, and returns its exit status.
// A non-zero exit code is not an error for Wait; the returned error is
// only non-nil if the exit status cannot be determined.
func (p *Process) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()
	status := exitStatus(p.cmd.ProcessState)
	if err != nil && p.cmd.ProcessState == nil {
		return status, err
	}
	return status, nil
}

// Kill stops the aligner without waiting for its output to be read,
// and waits for it to exit.
func (p *Process) Kill() (ExitStatus, error) {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return ExitStatus{Code: -1}, err
	}
	return p.Wait()
}
