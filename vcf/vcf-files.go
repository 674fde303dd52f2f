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
	"os"
	"strconv"
	"strings"
)

// A PanelReader holds the variant panel of a VCF file: the chromosomes in
// their declared order and, per chromosome, the position-ordered variants
// with the phased panel genotypes. A PanelReader is read-only after
// construction and safe for concurrent queries.
type PanelReader struct {
	filename string
	samples  []string
	// declared chromosome order
	chromosomes []string
	variants    map[string][]*Variant
}

// NewPanelReader parses the panel VCF. Panel genotypes must be phased and
// diploid; variants must be sorted by position within each chromosome.
func NewPanelReader(filename string) (reader *PanelReader, err error) {
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

	reader = &PanelReader{
		filename: filename,
		variants: make(map[string][]*Variant),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	line := 0
	sawColumns := false
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.HasPrefix(text, "##") {
			continue
		}
		if strings.HasPrefix(text, "#") {
			columns := strings.Split(text, "\t")
			if len(columns) < len(DefaultHeaderColumns)+1 {
				return nil, fmt.Errorf("%v:%v: the panel VCF needs a FORMAT column and at least one panel sample", filename, line)
			}
			for i, name := range DefaultHeaderColumns {
				if columns[i] != name {
					return nil, fmt.Errorf("%v:%v: unexpected header column %q, want %q", filename, line, columns[i], name)
				}
			}
			reader.samples = columns[len(DefaultHeaderColumns):]
			sawColumns = true
			continue
		}
		if !sawColumns {
			return nil, fmt.Errorf("%v:%v: variant record before the #CHROM header line", filename, line)
		}
		variant, err := reader.parseVariant(text, line)
		if err != nil {
			return nil, err
		}
		previous := reader.variants[variant.Chrom]
		if len(previous) == 0 {
			reader.chromosomes = append(reader.chromosomes, variant.Chrom)
		} else if previous[len(previous)-1].Pos > variant.Pos {
			return nil, fmt.Errorf("%v:%v: variants of chromosome %v are not sorted by position", filename, line, variant.Chrom)
		}
		reader.variants[variant.Chrom] = append(previous, variant)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	if !sawColumns {
		return nil, fmt.Errorf("%v: missing #CHROM header line", filename)
	}
	return reader, nil
}

func (reader *PanelReader) parseVariant(text string, line int) (*Variant, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != len(DefaultHeaderColumns)+len(reader.samples) {
		return nil, fmt.Errorf("%v:%v: %v fields, want %v", reader.filename, line, len(fields), len(DefaultHeaderColumns)+len(reader.samples))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%v:%v: invalid POS %q", reader.filename, line, fields[1])
	}
	variant := &Variant{
		Chrom: fields[0],
		Pos:   pos,
		ID:    fields[2],
		Ref:   fields[3],
	}
	if variant.Ref == "" || variant.Ref == "." {
		return nil, fmt.Errorf("%v:%v: missing REF allele", reader.filename, line)
	}
	if alt := fields[4]; alt != "" && alt != "." {
		variant.Alt = strings.Split(alt, ",")
	}
	if variant.NrAlleles() > MaxNrAlleles {
		return nil, fmt.Errorf("%v:%v: %v alleles, at most %v are supported", reader.filename, line, variant.NrAlleles(), MaxNrAlleles)
	}
	format := fields[8]
	if format != "GT" && !strings.HasPrefix(format, "GT:") {
		return nil, fmt.Errorf("%v:%v: FORMAT must lead with GT", reader.filename, line)
	}
	for _, field := range fields[len(DefaultHeaderColumns):] {
		gt, err := reader.parseGenotype(field, variant.NrAlleles(), line)
		if err != nil {
			return nil, err
		}
		variant.PanelGenotypes = append(variant.PanelGenotypes, gt)
	}
	return variant, nil
}

func (reader *PanelReader) parseGenotype(field string, nrAlleles, line int) (Genotype, error) {
	if i := strings.IndexByte(field, ':'); i >= 0 {
		field = field[:i]
	}
	entries := strings.Split(field, "|")
	if len(entries) != 2 {
		return Genotype{}, fmt.Errorf("%v:%v: panel genotype %q is not phased diploid", reader.filename, line, field)
	}
	gt := Genotype{Phased: true, GT: make([]int, 2)}
	for i, entry := range entries {
		allele, err := strconv.Atoi(entry)
		if err != nil || allele < 0 || allele >= nrAlleles {
			return Genotype{}, fmt.Errorf("%v:%v: invalid panel allele %q", reader.filename, line, entry)
		}
		gt.GT[i] = allele
	}
	return gt, nil
}

// Chromosomes returns the chromosomes in the order the VCF declares them.
func (reader *PanelReader) Chromosomes() []string {
	return reader.chromosomes
}

// VariantsOf returns the position-ordered variants of a chromosome.
func (reader *PanelReader) VariantsOf(chrom string) []*Variant {
	return reader.variants[chrom]
}

// Samples returns the panel sample names in column order.
func (reader *PanelReader) Samples() []string {
	return reader.samples
}

// NrPaths returns the number of haplotype paths of the panel, two per
// panel sample.
func (reader *PanelReader) NrPaths() int {
	return 2 * len(reader.samples)
}
