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

package genotyping

import (
	"testing"

	"github.com/yonghaoy/pangenie/kmers"
	"github.com/yonghaoy/pangenie/vcf"
)

type fakeCounts struct {
	kmerSize  int
	counts    map[uint64]uint32
	corrected map[uint64]float64
}

func (f *fakeCounts) KmerSize() int {
	return f.kmerSize
}

func (f *fakeCounts) Abundance(kmer uint64) uint32 {
	return f.counts[kmer]
}

func (f *fakeCounts) CorrectedAbundance(kmer uint64) float64 {
	if count, ok := f.corrected[kmer]; ok {
		return count
	}
	return float64(f.counts[kmer])
}

func (f *fakeCounts) add(seq string, count uint32, corrected float64) {
	kmers.Enumerate(seq, f.kmerSize, func(kmer uint64) {
		f.counts[kmer] += count
		if corrected >= 0 {
			f.corrected[kmer] = corrected
		}
	})
}

func newFakeCounts(kmerSize int) *fakeCounts {
	return &fakeCounts{
		kmerSize:  kmerSize,
		counts:    make(map[uint64]uint32),
		corrected: make(map[uint64]float64),
	}
}

// a 60 base contig whose canonical 5-mers are all distinct, with a C>A SNP
// at position 31
const (
	testContig     = "CAGCGCGGTCAGTTCCATCACCCTAAGTAACCGAATAATGCGTTCGCTCTATTGACTACG"
	testKmerSize   = 5
	testRefSegment = "GTAACCGAA"
	testAltSegment = "GTAAACGAA"
)

func testVariant() *vcf.Variant {
	return &vcf.Variant{
		Chrom: "chr1",
		Pos:   31,
		Ref:   "C",
		Alt:   []string{"A"},
		PanelGenotypes: []vcf.Genotype{
			{Phased: true, GT: []int{0, 1}},
		},
	}
}

func TestUniqueKmerComputer(t *testing.T) {
	variant := testVariant()

	// the genomic counts see the reference once and the alternative
	// allele segment once
	genomic := newFakeCounts(testKmerSize)
	genomic.add(testContig, 1, -1)
	genomic.add(testAltSegment, 1, -1)

	// a heterozygous sample: reference context at diploid coverage 30,
	// both allele segments at haploid coverage 15
	reads := newFakeCounts(testKmerSize)
	reads.add(testContig, 30, 30)
	reads.add(testRefSegment, 0, 15)
	reads.add(testAltSegment, 0, 15)

	computer := NewUniqueKmerComputer(genomic, reads, []*vcf.Variant{variant}, []byte(testContig), 30)
	descriptors := computer.Compute()
	if len(descriptors) != 1 {
		t.Fatal("wrong number of descriptors")
	}
	uk := descriptors[0]
	if uk.VariantPosition() != 31 {
		t.Error("variant position failed")
	}
	if uk.NrPaths() != 2 {
		t.Error("paths not bound")
	}
	if !approxEqual(uk.Coverage(), 15, 1e-9) {
		t.Error("local coverage failed:", uk.Coverage())
	}
	// every window of an allele segment overlaps the SNP, so each allele
	// contributes 5 discriminating kmers
	counts := uk.KmersOnAlleles()
	if counts[0] != 5 || counts[1] != 5 {
		t.Error("kmers on alleles failed:", counts)
	}
	if uk.Size() != 10 {
		t.Error("wrong number of unique kmers:", uk.Size())
	}
	// the heterozygous counts must favor one copy of each allele
	emission := NewEmissionProbabilityComputer(uk)
	het := emission.Probability(0, 1)
	if het <= emission.Probability(0, 0) || het <= emission.Probability(1, 1) {
		t.Error("heterozygous signal lost in the descriptor")
	}
}

func TestUniqueKmerComputerSharedKmers(t *testing.T) {
	variant := testVariant()
	genomic := newFakeCounts(testKmerSize)
	genomic.add(testContig, 1, -1)
	genomic.add(testAltSegment, 1, -1)
	// a kmer seen twice in the genome cannot be unique to the variant
	genomic.add(testRefSegment, 1, -1)
	reads := newFakeCounts(testKmerSize)
	reads.add(testContig, 30, 30)

	computer := NewUniqueKmerComputer(genomic, reads, []*vcf.Variant{variant}, []byte(testContig), 30)
	uk := computer.Compute()[0]
	counts := uk.KmersOnAlleles()
	if counts[0] != 0 {
		t.Error("repeated reference kmers were kept:", counts[0])
	}
	if counts[1] != 5 {
		t.Error("alternative kmers lost:", counts[1])
	}
}

func TestCopyNumberOf(t *testing.T) {
	cn := copyNumberOf(15, 15)
	if cn.Probability(1) <= cn.Probability(0) || cn.Probability(1) <= cn.Probability(2) {
		t.Error("count at coverage must favor one copy")
	}
	cn = copyNumberOf(0, 15)
	if cn.Probability(0) <= cn.Probability(1) {
		t.Error("zero count must favor zero copies")
	}
	cn = copyNumberOf(30, 15)
	if cn.Probability(2) <= cn.Probability(1) {
		t.Error("doubled count must favor two copies")
	}
}
