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

import "log"

// A CopyNumber holds unnormalized likelihoods of observing a k-mer 0, 1, or
// 2 times in the diploid sample.
type CopyNumber struct {
	probabilities [3]float64
}

// NewCopyNumber creates a copy number distribution from the three
// likelihoods. The values need not sum to 1.
func NewCopyNumber(cn0, cn1, cn2 float64) CopyNumber {
	return CopyNumber{probabilities: [3]float64{cn0, cn1, cn2}}
}

// Probability returns the likelihood of observing cn copies.
func (c CopyNumber) Probability(cn int) float64 {
	if cn < 0 || cn > 2 {
		log.Panicf("CopyNumber.Probability: copy number %v does not exist", cn)
	}
	return c.probabilities[cn]
}
