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
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yonghaoy/pangenie/kmers"
	"github.com/yonghaoy/pangenie/vcf"
)

type (
	// KmerCounts answers abundance queries on the genomic k-mer counts.
	// Implementations must be safe for concurrent read-only queries.
	KmerCounts interface {
		KmerSize() int
		Abundance(kmer uint64) uint32
	}

	// CorrectedKmerCounts additionally answers bias-corrected abundance
	// queries, for the read k-mer counts.
	CorrectedKmerCounts interface {
		KmerCounts
		CorrectedAbundance(kmer uint64) float64
	}
)

// A UniqueKmerComputer builds the per-variant UniqueKmers descriptors of
// one chromosome from the genomic and read k-mer counts and the variant
// panel.
type UniqueKmerComputer struct {
	genomic  KmerCounts
	reads    CorrectedKmerCounts
	variants []*vcf.Variant
	contig   []byte
	// corrected abundance peak, i.e. the diploid k-mer coverage
	peak int
}

// NewUniqueKmerComputer creates a computer for one chromosome. contig is
// the chromosome's reference sequence; peak the corrected k-mer abundance
// peak of the reads.
func NewUniqueKmerComputer(genomic KmerCounts, reads CorrectedKmerCounts, variants []*vcf.Variant, contig []byte, peak int) *UniqueKmerComputer {
	if genomic.KmerSize() != reads.KmerSize() {
		log.Panicf("UniqueKmerComputer: genomic and read counts disagree on the kmer size (%v vs %v)", genomic.KmerSize(), reads.KmerSize())
	}
	return &UniqueKmerComputer{
		genomic:  genomic,
		reads:    reads,
		variants: variants,
		contig:   contig,
		peak:     peak,
	}
}

// at most this many k-mers are kept per variant
const maxKmersPerVariant = 300

// the window left of a variant that local coverage is estimated from
const coverageWindow = 1000

// Compute builds the descriptors, one per variant, in variant order.
func (computer *UniqueKmerComputer) Compute() []*UniqueKmers {
	kmerSize := computer.genomic.KmerSize()
	result := make([]*UniqueKmers, 0, len(computer.variants))
	for _, variant := range computer.variants {
		uk := NewUniqueKmers(variant.Pos)
		nrAlleles := variant.NrAlleles()
		for allele := 0; allele < nrAlleles; allele++ {
			uk.InsertEmptyAllele(uint8(allele))
		}
		for path, allele := range variant.PathAlleles() {
			uk.InsertPath(path, allele)
		}
		coverage := computer.localCoverage(variant, kmerSize)
		uk.SetCoverage(coverage)
		computer.insertUniqueKmers(uk, variant, coverage, kmerSize)
		result = append(result, uk)
	}
	return result
}

// insertUniqueKmers selects the k-mers of the variant's allele segments
// that discriminate between alleles and occur nowhere else in the genome,
// and scores their corrected read counts against the count model.
func (computer *UniqueKmerComputer) insertUniqueKmers(uk *UniqueKmers, variant *vcf.Variant, coverage float64, kmerSize int) {
	type occurrence struct {
		perAllele map[uint8]int
		total     int
	}
	occurrences := make(map[uint64]*occurrence)
	nrAlleles := variant.NrAlleles()
	for allele := 0; allele < nrAlleles; allele++ {
		segment := variant.Segment(computer.contig, allele, kmerSize-1)
		a := uint8(allele)
		kmers.Enumerate(segment, kmerSize, func(kmer uint64) {
			o := occurrences[kmer]
			if o == nil {
				o = &occurrence{perAllele: make(map[uint8]int)}
				occurrences[kmer] = o
			}
			o.perAllele[a]++
			o.total++
		})
	}

	// map order is not deterministic, so sort before selecting
	selected := make([]uint64, 0, len(occurrences))
	for kmer := range occurrences {
		selected = append(selected, kmer)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	for _, kmer := range selected {
		if uk.Size() >= maxKmersPerVariant {
			break
		}
		o := occurrences[kmer]
		// a unique k-mer occurs at most once per allele and nowhere else
		if o.total != int(computer.genomic.Abundance(kmer)) {
			continue
		}
		if len(o.perAllele) == nrAlleles {
			// present on every allele, discriminates nothing
			continue
		}
		onceEach := true
		for _, n := range o.perAllele {
			if n > 1 {
				onceEach = false
				break
			}
		}
		if !onceEach {
			continue
		}
		alleles := make([]uint8, 0, len(o.perAllele))
		for a := range o.perAllele {
			alleles = append(alleles, a)
		}
		sort.Slice(alleles, func(i, j int) bool { return alleles[i] < alleles[j] })
		cn := copyNumberOf(computer.reads.CorrectedAbundance(kmer), coverage)
		if err := uk.InsertKmer(cn, alleles); err != nil {
			log.Panic(err)
		}
	}
}

// localCoverage estimates the haploid k-mer coverage near the variant: the
// median corrected read count of genome-unique reference k-mers in a
// window left of the variant, halved because reference k-mers sit on both
// haplotypes. Falls back to half the abundance peak.
func (computer *UniqueKmerComputer) localCoverage(variant *vcf.Variant, kmerSize int) float64 {
	end := variant.Pos - 1
	if end > len(computer.contig) {
		end = len(computer.contig)
	}
	start := end - coverageWindow
	if start < 0 {
		start = 0
	}
	var counts []float64
	kmers.Enumerate(string(computer.contig[start:end]), kmerSize, func(kmer uint64) {
		if computer.genomic.Abundance(kmer) == 1 {
			counts = append(counts, computer.reads.CorrectedAbundance(kmer))
		}
	})
	if len(counts) == 0 {
		return float64(computer.peak) / 2
	}
	sort.Float64s(counts)
	coverage := counts[len(counts)/2] / 2
	if coverage <= 0 {
		return float64(computer.peak) / 2
	}
	return coverage
}

// copyNumberOf scores an observed corrected count against Poisson count
// models for 0, 1, and 2 copies at the given haploid coverage. The 0-copy
// rate accounts for sequencing errors.
func copyNumberOf(count, coverage float64) CopyNumber {
	if coverage <= 0 {
		coverage = 1
	}
	observed := math.Round(count)
	cn0 := distuv.Poisson{Lambda: coverage / 20}.Prob(observed)
	cn1 := distuv.Poisson{Lambda: coverage}.Prob(observed)
	cn2 := distuv.Poisson{Lambda: 2 * coverage}.Prob(observed)
	return NewCopyNumber(cn0, cn1, cn2)
}
