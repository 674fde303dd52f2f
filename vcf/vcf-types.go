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

// Package vcf reads variant panels from VCF files and writes genotyping
// and phasing results back out as VCF.
package vcf

// The supported VCF file format version.
const (
	FileFormatVersion     = "VCFv4.3"
	FileFormatVersionLine = "##fileformat=VCFv4.3"
)

// DefaultHeaderColumns for VCF files.
var DefaultHeaderColumns = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}

// MaxNrAlleles is the largest number of alleles a variant may declare.
const MaxNrAlleles = 255

type (
	// A Genotype is one panel sample's phased allele pair at a variant.
	Genotype struct {
		Phased bool
		GT     []int
	}

	// A Variant is one line of the panel VCF: the variant record plus the
	// phased genotypes of the panel samples.
	Variant struct {
		Chrom          string
		Pos            int // 1-based, as in the VCF
		ID             string
		Ref            string
		Alt            []string
		PanelGenotypes []Genotype
	}
)

// NrAlleles returns the number of alleles of the variant, the reference
// allele included.
func (v *Variant) NrAlleles() int {
	return 1 + len(v.Alt)
}

// AlleleSequence returns the sequence of the given allele; allele 0 is the
// reference allele.
func (v *Variant) AlleleSequence(allele int) string {
	if allele == 0 {
		return v.Ref
	}
	return v.Alt[allele-1]
}

// PathAlleles flattens the phased panel genotypes into the allele carried
// by each haplotype path, two paths per panel sample, in column order.
func (v *Variant) PathAlleles() []uint8 {
	alleles := make([]uint8, 0, 2*len(v.PanelGenotypes))
	for _, gt := range v.PanelGenotypes {
		for _, a := range gt.GT {
			alleles = append(alleles, uint8(a))
		}
	}
	return alleles
}

// Segment returns the allele sequence embedded in its reference context:
// flank reference bases on either side of the variant site, clamped at the
// contig ends.
func (v *Variant) Segment(contig []byte, allele, flank int) string {
	start := v.Pos - 1
	end := start + len(v.Ref)
	left := start - flank
	if left < 0 {
		left = 0
	}
	right := end + flank
	if right > len(contig) {
		right = len(contig)
	}
	return string(contig[left:start]) + v.AlleleSequence(allele) + string(contig[end:right])
}
