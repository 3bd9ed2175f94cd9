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
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Standard file names for the standard streams.
const (
	StdinName  = "/dev/stdin"
	StdoutName = "/dev/stdout"
)

// Open a SAM file for input.
//
// If the name is "/dev/stdin", then the input is read from os.Stdin.
func Open(name string) (*LineReader, error) {
	if name == StdinName {
		return NewLineReader(os.Stdin), nil
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return NewLineReader(file), nil
}

// OutputFile represents a SAM file for output. Lines are written to a
// temporary file in the same directory, which only replaces the named
// file on Commit.
type OutputFile struct {
	*bufio.Writer
	name      string
	tmpName   string
	file      *os.File
	committed bool
}

// TemporaryName returns the name of the file that Create uses for
// writing before the output is committed.
func TemporaryName(name string) string {
	dir, base := filepath.Split(name)
	return filepath.Join(dir, "."+base+"."+uuid.New().String()+".tmp")
}

// Create a SAM file for output.
//
// If the name is "/dev/stdout", then the output is written to
// os.Stdout, and Commit only flushes.
func Create(name string) (*OutputFile, error) {
	if name == StdoutName {
		return &OutputFile{Writer: bufio.NewWriter(os.Stdout), name: name}, nil
	}
	tmpName := TemporaryName(name)
	file, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, err
	}
	return &OutputFile{
		Writer:  bufio.NewWriter(file),
		name:    name,
		tmpName: tmpName,
		file:    file,
	}, nil
}

// Name returns the name the output file has after Commit.
func (f *OutputFile) Name() string {
	return f.name
}

// Commit flushes all buffered lines and moves the output file into
// place.
func (f *OutputFile) Commit() error {
	if f.committed {
		return nil
	}
	if err := f.Flush(); err != nil {
		return &IOError{Op: "flushing " + f.name, Err: err}
	}
	if f.file != nil {
		file := f.file
		f.file = nil
		if err := file.Close(); err != nil {
			_ = os.Remove(f.tmpName)
			return &IOError{Op: "closing " + f.name, Err: err}
		}
		if err := os.Rename(f.tmpName, f.name); err != nil {
			_ = os.Remove(f.tmpName)
			return &IOError{Op: "renaming " + f.tmpName, Err: err}
		}
	}
	f.committed = true
	return nil
}

// Close releases the output file. If Commit has not been called
// successfully, the temporary file is removed and the named file is
// left untouched.
func (f *OutputFile) Close() error {
	if f.committed {
		return nil
	}
	if f.tmpName == "" {
		return f.Flush()
	}
	if f.file == nil {
		return nil
	}
	file := f.file
	f.file = nil
	err := file.Close()
	if rerr := os.Remove(f.tmpName); err == nil {
		err = rerr
	}
	return err
}
