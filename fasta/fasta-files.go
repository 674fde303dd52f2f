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

// Package fasta reads and writes FASTA files.
package fasta

import (
	"bufio"
	"fmt"
	"os"
)

// A Reference is a FASTA reference genome held in memory, with the contig
// order of the file preserved.
type Reference struct {
	contigOrder []string
	contigs     map[string][]byte
}

var iupacTable = map[byte]byte{
	'A': 'A', 'a': 'A',
	'C': 'C', 'c': 'C',
	'G': 'G', 'g': 'G',
	'T': 'T', 't': 'T',
	'N': 'N', 'n': 'N',
	'R': 'N', 'r': 'N',
	'Y': 'N', 'y': 'N',
	'M': 'N', 'm': 'N',
	'K': 'N', 'k': 'N',
	'W': 'N', 'w': 'N',
	'S': 'N', 's': 'N',
	'B': 'N', 'b': 'N',
	'D': 'N', 'd': 'N',
	'H': 'N', 'h': 'N',
	'V': 'N', 'v': 'N',
}

// ToN normalizes IUPAC ambiguity codes to N and upcases the plain bases.
func ToN(base byte) byte {
	if n, ok := iupacTable[base]; ok {
		return n
	}
	return 'N'
}

// contigName extracts the contig name from a '>' header line: the first
// run of printable characters, dropping any description after it.
func contigName(header []byte) string {
	start := 1
	for ; start < len(header); start++ {
		if c := header[start]; c >= '!' && c <= '~' {
			break
		}
	}
	end := start + 1
	for ; end < len(header); end++ {
		if c := header[end]; c < '!' || c > '~' {
			break
		}
	}
	return string(header[start:end])
}

// ReadReference reads a full FASTA file into memory, normalizing ambiguity
// codes.
func ReadReference(filename string) (reference *Reference, err error) {
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

	reference = &Reference{contigs: make(map[string][]byte)}
	var contig string
	var seq []byte

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			if contig != "" {
				reference.contigs[contig] = seq
			}
			contig = contigName(b)
			if _, ok := reference.contigs[contig]; ok || contig == "" {
				return nil, fmt.Errorf("%v:%v: invalid or duplicate FASTA header %q", filename, line, string(b))
			}
			reference.contigOrder = append(reference.contigOrder, contig)
			seq = nil
			continue
		}
		if contig == "" {
			return nil, fmt.Errorf("%v:%v: sequence data before the first FASTA header", filename, line)
		}
		for _, base := range b {
			seq = append(seq, ToN(base))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	if contig != "" {
		reference.contigs[contig] = seq
	}
	if len(reference.contigOrder) == 0 {
		return nil, fmt.Errorf("%v: no FASTA records", filename)
	}
	return reference, nil
}

// Contig returns the sequence of the named contig.
func (reference *Reference) Contig(name string) ([]byte, bool) {
	seq, ok := reference.contigs[name]
	return seq, ok
}

// Names returns the contig names in file order.
func (reference *Reference) Names() []string {
	return reference.contigOrder
}

const lineWidth = 80

// WriteRecord writes one FASTA record, wrapping the sequence.
func WriteRecord(out *bufio.Writer, name string, seq []byte) {
	fmt.Fprintln(out, ">"+name)
	for len(seq) > lineWidth {
		out.Write(seq[:lineWidth])
		out.WriteByte('\n')
		seq = seq[lineWidth:]
	}
	if len(seq) > 0 {
		out.Write(seq)
		out.WriteByte('\n')
	}
}

// WriteRecordString is WriteRecord for string sequences.
func WriteRecordString(out *bufio.Writer, name, seq string) {
	WriteRecord(out, name, []byte(seq))
}
