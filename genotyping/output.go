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

import "github.com/yonghaoy/pangenie/vcf"

// GenotypingCall renders a result as the sample call of the genotyping
// VCF: the max-a-posteriori genotype with its quality and the full
// posterior vector. Without a unique maximum the call is missing.
func GenotypingCall(result *GenotypingResult, nrAlleles int) vcf.GenotypeCall {
	call := vcf.GenotypeCall{Likelihoods: result.AllLikelihoods(nrAlleles)}
	best, ok := result.LikeliestGenotype()
	if !ok {
		call.Missing = true
		return call
	}
	call.Allele1 = int(best.Allele1)
	call.Allele2 = int(best.Allele2)
	call.Quality = result.Quality(best)
	return call
}

// PhasingCall renders a result as the sample call of the phasing VCF: the
// phased Viterbi haplotype pair, or a missing call when the variant could
// not be phased.
func PhasingCall(result *GenotypingResult) vcf.GenotypeCall {
	allele1, allele2, phased := result.Haplotypes()
	if !phased {
		return vcf.GenotypeCall{Missing: true}
	}
	return vcf.GenotypeCall{
		Allele1: int(allele1),
		Allele2: int(allele2),
		Phased:  true,
	}
}
