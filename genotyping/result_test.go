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

import "testing"

func TestGenotypeNormalization(t *testing.T) {
	if NewGenotype(3, 1) != NewGenotype(1, 3) {
		t.Error("genotypes are not normalized")
	}
	gt := NewGenotype(2, 0)
	if gt.Allele1 != 0 || gt.Allele2 != 2 {
		t.Error("genotype allele order failed")
	}
}

func TestResultLikelihoods(t *testing.T) {
	result := NewGenotypingResult()
	result.AddToLikelihood(0, 1, 0.25)
	result.AddToLikelihood(1, 0, 0.25)
	result.AddToLikelihood(0, 0, 0.4)
	result.AddToLikelihood(1, 1, 0.1)
	if !approxEqual(result.Likelihood(0, 1), 0.5, 1e-12) {
		t.Error("ordered contributions are not folded into one genotype")
	}
	if !approxEqual(result.Likelihood(1, 0), 0.5, 1e-12) {
		t.Error("Likelihood is not symmetric")
	}
	genotypes := result.Genotypes()
	if len(genotypes) != 3 || genotypes[0] != NewGenotype(0, 0) || genotypes[1] != NewGenotype(0, 1) || genotypes[2] != NewGenotype(1, 1) {
		t.Error("Genotypes order failed")
	}
}

func TestResultAllLikelihoods(t *testing.T) {
	result := NewGenotypingResult()
	result.AddToLikelihood(0, 0, 0.2)
	result.AddToLikelihood(0, 1, 0.5)
	result.AddToLikelihood(1, 1, 0.3)
	// VCF genotype order: (0,0) (0,1) (1,1)
	likelihoods := result.AllLikelihoods(2)
	if len(likelihoods) != 3 {
		t.Fatal("AllLikelihoods has wrong size")
	}
	if likelihoods[0] != 0.2 || likelihoods[1] != 0.5 || likelihoods[2] != 0.3 {
		t.Error("AllLikelihoods order failed")
	}
	likelihoods = result.AllLikelihoods(3)
	if len(likelihoods) != 6 || likelihoods[3] != 0 || likelihoods[4] != 0 || likelihoods[5] != 0 {
		t.Error("AllLikelihoods with extra alleles failed")
	}
}

func TestResultLikeliestGenotype(t *testing.T) {
	result := NewGenotypingResult()
	if _, ok := result.LikeliestGenotype(); ok {
		t.Error("empty result has a likeliest genotype")
	}
	result.AddToLikelihood(0, 0, 0.5)
	result.AddToLikelihood(0, 1, 0.5)
	if _, ok := result.LikeliestGenotype(); ok {
		t.Error("tied result has a likeliest genotype")
	}
	result.AddToLikelihood(0, 1, 0.2)
	best, ok := result.LikeliestGenotype()
	if !ok || best != NewGenotype(0, 1) {
		t.Error("LikeliestGenotype failed")
	}
}

func TestResultQuality(t *testing.T) {
	result := NewGenotypingResult()
	result.AddToLikelihood(0, 1, 0.99)
	result.AddToLikelihood(0, 0, 0.01)
	if q := result.Quality(NewGenotype(0, 1)); q != 19 && q != 20 {
		t.Error("Quality failed:", q)
	}
	certain := NewGenotypingResult()
	certain.AddToLikelihood(0, 0, 1.0)
	if certain.Quality(NewGenotype(0, 0)) != maxQuality {
		t.Error("Quality of a certain call failed")
	}
}

func TestResultHaplotypes(t *testing.T) {
	result := NewGenotypingResult()
	if _, _, phased := result.Haplotypes(); phased {
		t.Error("fresh result claims to be phased")
	}
	result.SetHaplotypes(1, 0)
	a1, a2, phased := result.Haplotypes()
	if !phased || a1 != 1 || a2 != 0 {
		t.Error("Haplotypes roundtrip failed")
	}
}
