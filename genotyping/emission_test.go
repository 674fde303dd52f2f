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
	"testing"
)

func approxEqual(x, y, epsilon float64) bool {
	return math.Abs(x-y) <= epsilon
}

func TestEmissionProbabilities(t *testing.T) {
	uk := testUniqueKmers(t)
	emission := NewEmissionProbabilityComputer(uk)
	// kmer 0 on allele 0, kmer 1 on allele 1, kmer 2 shared
	if !approxEqual(emission.Probability(0, 0), 0.05*0.05*0.9, 1e-12) {
		t.Error("emission of genotype (0,0) failed")
	}
	if !approxEqual(emission.Probability(0, 1), 0.9*0.9*0.9, 1e-12) {
		t.Error("emission of genotype (0,1) failed")
	}
	if !approxEqual(emission.Probability(1, 1), 0.05*0.05*0.9, 1e-12) {
		t.Error("emission of genotype (1,1) failed")
	}
}

func TestEmissionSymmetry(t *testing.T) {
	uk := testUniqueKmers(t)
	emission := NewEmissionProbabilityComputer(uk)
	for a1 := uint8(0); a1 < 2; a1++ {
		for a2 := uint8(0); a2 < 2; a2++ {
			if emission.Probability(a1, a2) != emission.Probability(a2, a1) {
				t.Error("emission is not symmetric for", a1, a2)
			}
		}
	}
}

func TestEmissionMissingGenotype(t *testing.T) {
	uk := testUniqueKmers(t)
	emission := NewEmissionProbabilityComputer(uk)
	if emission.Probability(0, 5) != 0 || emission.Probability(5, 5) != 0 {
		t.Error("emission of an absent allele is not 0")
	}
}

// a single kmer unique to one allele must favor the genotypes carrying
// that allele exactly once
func TestEmissionHeterozygousDominance(t *testing.T) {
	uk := NewUniqueKmers(500)
	uk.InsertEmptyAllele(0)
	uk.InsertEmptyAllele(1)
	uk.InsertPath(0, 0)
	uk.InsertPath(1, 1)
	if err := uk.InsertKmer(NewCopyNumber(0.1, 0.8, 0.1), []uint8{0}); err != nil {
		t.Fatal(err)
	}
	emission := NewEmissionProbabilityComputer(uk)
	het := emission.Probability(0, 1)
	if het <= emission.Probability(0, 0) {
		t.Error("heterozygous emission does not dominate two copies")
	}
	if het <= emission.Probability(1, 1) {
		t.Error("heterozygous emission does not dominate zero copies")
	}
}

func TestEmissionWithoutKmers(t *testing.T) {
	uk := NewUniqueKmers(100)
	uk.InsertEmptyAllele(0)
	uk.InsertEmptyAllele(1)
	uk.InsertPath(0, 0)
	uk.InsertPath(1, 1)
	emission := NewEmissionProbabilityComputer(uk)
	for a1 := uint8(0); a1 < 2; a1++ {
		for a2 := uint8(0); a2 < 2; a2++ {
			if emission.Probability(a1, a2) != 1 {
				t.Error("emission without kmers is not flat")
			}
		}
	}
}
