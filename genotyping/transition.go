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

import "math"

// A TransitionProbabilityComputer holds the Li-Stephens transition
// probabilities between the path pair states of two neighbouring variants.
// The diploid transition factorizes into the product of two per-haplotype
// transitions, so only the per-haplotype stay and switch probabilities are
// kept.
type TransitionProbabilityComputer struct {
	uniform                  bool
	noRecombProb, recombProb float64
}

// NewTransitionProbabilityComputer derives the transition probabilities for
// two neighbouring variants at the given genomic positions. recombRate is
// in cM/Mb; effectiveN is the effective population size. Negative distances
// are clamped to 0. With uniform set, transitions carry no information and
// every pair transition has probability 1.
func NewTransitionProbabilityComputer(fromVariant, toVariant int, recombRate float64, nrPaths int, uniform bool, effectiveN float64) *TransitionProbabilityComputer {
	t := &TransitionProbabilityComputer{uniform: uniform}
	if uniform {
		return t
	}
	distance := float64(toVariant - fromVariant)
	if distance < 0 {
		distance = 0
	}
	// convert to morgans and scale by the effective population size
	distanceCM := distance * 0.000001 * recombRate
	noRecomb := math.Exp(-(distanceCM / 100.0) * 4.0 * effectiveN / float64(nrPaths))
	t.recombProb = (1.0 - noRecomb) / float64(nrPaths)
	t.noRecombProb = noRecomb + t.recombProb
	return t
}

// Uniform tells whether the computer ignores genetic distance.
func (t *TransitionProbabilityComputer) Uniform() bool {
	return t.uniform
}

// HaplotypeProbabilities returns the per-haplotype probabilities of keeping
// the current path and of switching to one particular other path.
func (t *TransitionProbabilityComputer) HaplotypeProbabilities() (noRecomb, recomb float64) {
	return t.noRecombProb, t.recombProb
}

// Probability returns the probability of moving from path pair (from1,
// from2) to path pair (to1, to2).
func (t *TransitionProbabilityComputer) Probability(from1, from2, to1, to2 int) float64 {
	if t.uniform {
		return 1.0
	}
	p := t.recombProb
	if from1 == to1 {
		p = t.noRecombProb
	}
	q := t.recombProb
	if from2 == to2 {
		q = t.noRecombProb
	}
	return p * q
}
