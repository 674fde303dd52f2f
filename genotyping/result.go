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
	"math"
	"sort"
)

// A Genotype is an unordered pair of alleles, normalized so that Allele1 <=
// Allele2.
type Genotype struct {
	Allele1, Allele2 uint8
}

// NewGenotype creates a normalized genotype from two alleles in any order.
func NewGenotype(allele1, allele2 uint8) Genotype {
	if allele1 > allele2 {
		allele1, allele2 = allele2, allele1
	}
	return Genotype{Allele1: allele1, Allele2: allele2}
}

// A GenotypingResult collects, for one variant, the genotype posteriors
// computed by the Forward-Backward pass and the phased haplotype alleles
// chosen by Viterbi.
type GenotypingResult struct {
	likelihoods            map[Genotype]float64
	haplotype1, haplotype2 uint8
	phased                 bool
	degenerate             bool
}

// NewGenotypingResult creates an empty result.
func NewGenotypingResult() *GenotypingResult {
	return &GenotypingResult{likelihoods: make(map[Genotype]float64)}
}

// AddToLikelihood adds value to the posterior mass of the genotype
// (allele1, allele2).
func (r *GenotypingResult) AddToLikelihood(allele1, allele2 uint8, value float64) {
	r.likelihoods[NewGenotype(allele1, allele2)] += value
}

// Likelihood returns the posterior mass of the genotype (allele1, allele2).
func (r *GenotypingResult) Likelihood(allele1, allele2 uint8) float64 {
	return r.likelihoods[NewGenotype(allele1, allele2)]
}

// Genotypes returns the genotypes with recorded posterior mass, sorted.
func (r *GenotypingResult) Genotypes() []Genotype {
	genotypes := make([]Genotype, 0, len(r.likelihoods))
	for gt := range r.likelihoods {
		genotypes = append(genotypes, gt)
	}
	sort.Slice(genotypes, func(i, j int) bool {
		if genotypes[i].Allele1 != genotypes[j].Allele1 {
			return genotypes[i].Allele1 < genotypes[j].Allele1
		}
		return genotypes[i].Allele2 < genotypes[j].Allele2
	})
	return genotypes
}

// AllLikelihoods returns the posteriors of all genotypes over nrAlleles
// alleles, in VCF genotype order: the genotype (a1, a2) with a1 <= a2 is at
// index a2*(a2+1)/2 + a1.
func (r *GenotypingResult) AllLikelihoods(nrAlleles int) []float64 {
	result := make([]float64, nrAlleles*(nrAlleles+1)/2)
	for gt, p := range r.likelihoods {
		index := int(gt.Allele2)*(int(gt.Allele2)+1)/2 + int(gt.Allele1)
		if index < len(result) {
			result[index] = p
		}
	}
	return result
}

// LikeliestGenotype returns the genotype with the highest posterior mass.
// ok is false when no genotype has positive mass or the maximum is not
// unique.
func (r *GenotypingResult) LikeliestGenotype() (best Genotype, ok bool) {
	bestValue := 0.0
	unique := false
	for _, gt := range r.Genotypes() {
		if p := r.likelihoods[gt]; p > bestValue {
			best = gt
			bestValue = p
			unique = true
		} else if p == bestValue {
			unique = false
		}
	}
	return best, unique && bestValue > 0
}

// maximum reported genotype quality
const maxQuality = 10000

// Quality returns the phred-scaled probability that the given genotype is
// wrong.
func (r *GenotypingResult) Quality(gt Genotype) int {
	wrong := 1.0 - r.likelihoods[gt]
	if wrong <= 0 {
		return maxQuality
	}
	quality := int(-10.0 * math.Log10(wrong))
	if quality > maxQuality {
		return maxQuality
	}
	return quality
}

// SetHaplotypes records the phased alleles of the two haplotypes chosen by
// Viterbi.
func (r *GenotypingResult) SetHaplotypes(allele1, allele2 uint8) {
	r.haplotype1 = allele1
	r.haplotype2 = allele2
	r.phased = true
}

// Haplotypes returns the phased alleles chosen by Viterbi; phased is false
// when the variant could not be phased.
func (r *GenotypingResult) Haplotypes() (allele1, allele2 uint8, phased bool) {
	return r.haplotype1, r.haplotype2, r.phased
}

// MarkDegenerate flags the variant as numerically degenerate: no state
// explained the observed counts.
func (r *GenotypingResult) MarkDegenerate() {
	r.degenerate = true
}

// Degenerate tells whether the variant was flagged as numerically
// degenerate.
func (r *GenotypingResult) Degenerate() bool {
	return r.degenerate
}

// setUniform replaces the posteriors with a uniform distribution over the
// given genotypes.
func (r *GenotypingResult) setUniform(genotypes map[Genotype]bool) {
	r.likelihoods = make(map[Genotype]float64, len(genotypes))
	p := 1.0 / float64(len(genotypes))
	for gt := range genotypes {
		r.likelihoods[gt] = p
	}
}
