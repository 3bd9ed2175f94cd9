// Package sam filters SAM text streams line by line, as they are
// produced by short-read aligners such as bowtie2.
//
// Header lines are copied unchanged. Alignment lines are kept when
// their reference name (RNAME) matches a Criterion and their mapping
// quality (MAPQ) exceeds its threshold. Only the first five fields of
// an alignment line are inspected, so lines are never fully parsed,
// and the output is byte-for-byte a subset of the input, in input
// order.
//
// A LineFilter can run sequentially over any LineSource, for example
// a *bufio.Scanner over an in-memory string, or as a pargo pipeline
// over a LineReader that classifies batches of lines in parallel. See
// https://godoc.org/github.com/ExaScience/pargo/pipeline for details
// of pargo pipelines.
package sam
