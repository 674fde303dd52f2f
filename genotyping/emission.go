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

// An EmissionProbabilityComputer precomputes, for one variant, the
// likelihood of the observed k-mer counts under every genotype of its
// alleles. The table is symmetric in the two alleles.
type EmissionProbabilityComputer struct {
	probabilities [][]float64
}

// NewEmissionProbabilityComputer fills the genotype likelihood table for
// the given variant descriptor.
func NewEmissionProbabilityComputer(uk *UniqueKmers) *EmissionProbabilityComputer {
	alleles := uk.AlleleIDs()
	var maxAllele uint8
	for _, a := range alleles {
		if a > maxAllele {
			maxAllele = a
		}
	}
	probabilities := make([][]float64, int(maxAllele)+1)
	for i := range probabilities {
		probabilities[i] = make([]float64, int(maxAllele)+1)
	}
	for i, a1 := range alleles {
		for _, a2 := range alleles[i:] {
			p := emissionProbability(uk, a1, a2)
			probabilities[a1][a2] = p
			probabilities[a2][a1] = p
		}
	}
	return &EmissionProbabilityComputer{probabilities: probabilities}
}

// The likelihood of the observed counts is the product over all k-mers of
// the likelihood of the copy number the genotype assigns to the k-mer.
func emissionProbability(uk *UniqueKmers, allele1, allele2 uint8) float64 {
	assignment := uk.CombinePaths(allele1, allele2)
	probability := 1.0
	for i := 0; i < uk.Size(); i++ {
		probability *= uk.CopyNumberOf(i).Probability(assignment[i])
	}
	return probability
}

// Probability returns the emission likelihood of the genotype (allele1,
// allele2). Genotypes over alleles not present at the variant have
// likelihood 0.
func (e *EmissionProbabilityComputer) Probability(allele1, allele2 uint8) float64 {
	if int(allele1) >= len(e.probabilities) || int(allele2) >= len(e.probabilities) {
		return 0
	}
	return e.probabilities[allele1][allele2]
}
