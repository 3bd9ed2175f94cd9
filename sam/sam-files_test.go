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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	f, err := os.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	names, err := f.Readdirnames(0)
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestCreateCommit(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "reads.sam")
	out, err := Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := out.WriteString("@HD\tVN:1.6\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Error("output file visible before commit")
	}
	if err := out.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Error(err)
	}
	data, err := ioutil.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "@HD\tVN:1.6\n" {
		t.Errorf("unexpected contents %q", data)
	}
	if entries := dirEntries(t, dir); len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestCreateEmptyCommit(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty.sam")
	out, err := Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Commit(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(name)
	if err != nil {
		t.Fatal("output file not created for empty output")
	}
	if info.Size() != 0 {
		t.Errorf("unexpected size %v", info.Size())
	}
}

func TestCreateClose(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "aborted.sam")
	if err := ioutil.WriteFile(name, []byte("previous run\n"), 0666); err != nil {
		t.Fatal(err)
	}
	out, err := Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := out.WriteString("partial\n"); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous run\n" {
		t.Errorf("uncommitted output replaced existing file: %q", data)
	}
	if entries := dirEntries(t, dir); len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestTemporaryName(t *testing.T) {
	name := filepath.Join("out", "reads.sam")
	tmp1, tmp2 := TemporaryName(name), TemporaryName(name)
	if tmp1 == tmp2 {
		t.Error("temporary names not unique")
	}
	if filepath.Dir(tmp1) != "out" {
		t.Errorf("temporary name %v not next to %v", tmp1, name)
	}
	if base := filepath.Base(tmp1); !strings.HasPrefix(base, ".reads.sam.") || !strings.HasSuffix(base, ".tmp") {
		t.Errorf("unexpected temporary name %v", tmp1)
	}
}

func TestOpenFilterToFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.sam")
	output := filepath.Join(dir, "out.sam")
	contents := "@header\n" +
		"read1\t0\tchr7\t100\t15\n" +
		"read2\t0\tchr3\t50\t20\n" +
		"read3\t0\tchr7\t30\t5\n"
	if err := ioutil.WriteFile(input, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	src, err := Open(input)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	out, err := Create(output)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if _, err := NewLineFilter(chr7, Abort).RunPipeline(src, out); err != nil {
		t.Fatal(err)
	}
	if err := out.Commit(); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if expected := "@header\nread1\t0\tchr7\t100\t15\n"; string(data) != expected {
		t.Errorf("unexpected output %q, expected %q", data, expected)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.sam")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
