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

// Package genotyping implements the genotyping and phasing engine: the
// per-variant unique k-mer descriptors, the emission and transition
// probability model, and the hidden Markov model over the path pair
// states of a haplotype panel, decoded with Forward-Backward for
// genotype posteriors and with Viterbi for phasing.
//
// The k-mer counts the engine consumes come from the kmers package; the
// variant panel comes from the vcf package. One HMM decodes one
// chromosome; chromosomes are independent and can be decoded in
// parallel.
package genotyping
