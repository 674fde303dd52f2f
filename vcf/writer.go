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

package vcf

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// A GenotypeCall is the sample genotype written for one variant. A missing
// call renders as "./.". Likelihoods, when present, are posterior
// probabilities in VCF genotype order and render as log10-scaled GL
// values.
type GenotypeCall struct {
	Allele1, Allele2 int
	Phased           bool
	Missing          bool
	Quality          int
	Likelihoods      []float64
}

// An OutputWriter writes genotyping or phasing results for a single sample
// as a VCF file.
type OutputWriter struct {
	file       *os.File
	out        *bufio.Writer
	genotyping bool
}

// NewOutputWriter creates the output VCF and writes its header. With
// genotyping set, GQ and GL columns are declared next to GT.
func NewOutputWriter(filename, sample, source string, genotyping bool) (*OutputWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	writer := &OutputWriter{file: f, out: bufio.NewWriter(f), genotyping: genotyping}
	fmt.Fprintln(writer.out, FileFormatVersionLine)
	fmt.Fprintln(writer.out, "##source="+source)
	fmt.Fprintln(writer.out, `##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`)
	if genotyping {
		fmt.Fprintln(writer.out, `##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`)
		fmt.Fprintln(writer.out, `##FORMAT=<ID=GL,Number=G,Type=Float,Description="Log10-scaled genotype likelihoods">`)
	}
	fmt.Fprintln(writer.out, strings.Join(DefaultHeaderColumns, "\t")+"\t"+sample)
	return writer, nil
}

// the GL value written for genotypes with zero posterior mass
const minLogLikelihood = -10000.0

// Write appends one variant record with the given sample call.
func (writer *OutputWriter) Write(variant *Variant, call GenotypeCall) {
	alt := "."
	if len(variant.Alt) > 0 {
		alt = strings.Join(variant.Alt, ",")
	}
	id := variant.ID
	if id == "" {
		id = "."
	}
	fmt.Fprintf(writer.out, "%v\t%v\t%v\t%v\t%v\t.\tPASS\t.", variant.Chrom, variant.Pos, id, variant.Ref, alt)

	separator := "/"
	if call.Phased {
		separator = "|"
	}
	gt := "./."
	if !call.Missing {
		gt = strconv.Itoa(call.Allele1) + separator + strconv.Itoa(call.Allele2)
	}
	if !writer.genotyping {
		fmt.Fprintf(writer.out, "\tGT\t%v\n", gt)
		return
	}
	var gl strings.Builder
	for i, p := range call.Likelihoods {
		if i > 0 {
			gl.WriteByte(',')
		}
		fmt.Fprintf(&gl, "%.5g", logLikelihood(p))
	}
	fmt.Fprintf(writer.out, "\tGT:GQ:GL\t%v:%v:%v\n", gt, call.Quality, gl.String())
}

func logLikelihood(p float64) float64 {
	if p <= 0 {
		return minLogLikelihood
	}
	return math.Log10(p)
}

// Close flushes and closes the output file.
func (writer *OutputWriter) Close() error {
	if err := writer.out.Flush(); err != nil {
		return err
	}
	return writer.file.Close()
}
