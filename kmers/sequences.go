// pangenie: genotyping and phasing of small variants based on k-mer counting
// and known haplotype paths.
// Copyright (c) 2020 imec vzw.

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
// <https://github.com/yonghaoy/pangenie/blob/master/LICENSE.txt>.

package kmers

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// readSequences loads the sequences of a FASTA or FASTQ file. The format
// is detected from the first record marker.
func readSequences(filename string) (sequences []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := f.Close()
		if err == nil {
			err = nerr
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%v: %v", filename, err)
		}
		return nil, fmt.Errorf("%v: empty sequence file", filename)
	}
	first := scanner.Text()
	switch {
	case strings.HasPrefix(first, ">"):
		return readFastaSequences(filename, scanner)
	case strings.HasPrefix(first, "@"):
		return readFastqSequences(filename, scanner)
	default:
		return nil, fmt.Errorf("%v:1: neither a FASTA nor a FASTQ record marker", filename)
	}
}

// the first header line has already been consumed
func readFastaSequences(filename string, scanner *bufio.Scanner) ([]string, error) {
	var sequences []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if current.Len() > 0 {
				sequences = append(sequences, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	if current.Len() > 0 {
		sequences = append(sequences, current.String())
	}
	return sequences, nil
}

// the first @header line has already been consumed; FASTQ records are
// strictly 4 lines
func readFastqSequences(filename string, scanner *bufio.Scanner) ([]string, error) {
	var sequences []string
	line := 1
	field := 1
	for scanner.Scan() {
		line++
		field++
		switch field {
		case 2:
			sequences = append(sequences, scanner.Text())
		case 3:
			if !strings.HasPrefix(scanner.Text(), "+") {
				return nil, fmt.Errorf("%v:%v: malformed FASTQ separator line", filename, line)
			}
		case 4:
			field = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	if field != 0 {
		return nil, fmt.Errorf("%v: truncated FASTQ record at end of file", filename)
	}
	return sequences, nil
}
