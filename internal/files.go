package internal

import (
	"os"
	"path/filepath"
	"strings"
)

// FASTQ file extensions that SamFilename replaces, longest first.
var fastqExtensions = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}

// SamExt is the extension of SAM output files.
const SamExt = ".sam"

// SamFilename derives the name of the SAM output file for a FASTQ
// input file: a FASTQ extension is replaced by .sam, and any other
// name gets .sam appended, so that the output never overwrites the
// input.
func SamFilename(fastq string) string {
	lower := strings.ToLower(fastq)
	for _, ext := range fastqExtensions {
		if strings.HasSuffix(lower, ext) && len(fastq) > len(ext) {
			return fastq[:len(fastq)-len(ext)] + SamExt
		}
	}
	return fastq + SamExt
}

func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}
