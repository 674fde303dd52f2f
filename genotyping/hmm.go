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

	"gonum.org/v1/gonum/floats"
)

// The HMM decodes one chromosome's variant chain. Each column of the
// trellis is one variant; its states are the ordered pairs of panel paths.
// Emissions come from the per-variant unique k-mer counts, transitions
// follow the Li-Stephens recombination model. The Forward-Backward pass
// yields genotype posteriors, the Viterbi pass a phased haplotype pair.
type HMM struct {
	uniqueKmers []*UniqueKmers
	paths       []int
	// per variant, the allele carried by each path, in panel order
	alleles        [][]uint8
	emissions      []*EmissionProbabilityComputer
	transitions    []*TransitionProbabilityComputer
	forwardColumns [][]float64
	results        []*GenotypingResult
}

// NewHMM builds the trellis for the given variant chain and runs the
// requested passes. recombRate is in cM/Mb; effectiveN is the effective
// population size. With uniformTransitions set, genetic distances are
// ignored. Every variant must expose the same panel path set.
func NewHMM(uniqueKmers []*UniqueKmers, runGenotyping, runPhasing bool, recombRate float64, uniformTransitions bool, effectiveN float64) *HMM {
	hmm := &HMM{uniqueKmers: uniqueKmers}
	if len(uniqueKmers) == 0 {
		return hmm
	}
	hmm.paths, _ = uniqueKmers[0].PathIDs(nil)
	nrPaths := len(hmm.paths)
	hmm.alleles = make([][]uint8, len(uniqueKmers))
	hmm.emissions = make([]*EmissionProbabilityComputer, len(uniqueKmers))
	hmm.results = make([]*GenotypingResult, len(uniqueKmers))
	for t, uk := range uniqueKmers {
		paths, alleles := uk.PathIDs(nil)
		if len(paths) != nrPaths {
			log.Panicf("HMM: variant at position %v has %v paths, the panel has %v", uk.VariantPosition(), len(paths), nrPaths)
		}
		for i, p := range paths {
			if p != hmm.paths[i] {
				log.Panicf("HMM: variant at position %v disagrees with the panel path set", uk.VariantPosition())
			}
		}
		hmm.alleles[t] = alleles
		hmm.emissions[t] = NewEmissionProbabilityComputer(uk)
		hmm.results[t] = NewGenotypingResult()
	}
	hmm.transitions = make([]*TransitionProbabilityComputer, 0, len(uniqueKmers)-1)
	for t := 0; t+1 < len(uniqueKmers); t++ {
		hmm.transitions = append(hmm.transitions, NewTransitionProbabilityComputer(
			uniqueKmers[t].VariantPosition(), uniqueKmers[t+1].VariantPosition(),
			recombRate, nrPaths, uniformTransitions, effectiveN))
	}
	if runGenotyping {
		hmm.computeForward()
		hmm.computeBackwardPosteriors()
	}
	if runPhasing {
		hmm.computeViterbi()
	}
	return hmm
}

// GenotypingResults returns one result per variant, in variant order.
func (hmm *HMM) GenotypingResults() []*GenotypingResult {
	return hmm.results
}

// collapseColumn reduces a path pair column to its per-path row sums,
// per-path column sums, and total, the three ingredients of the factorized
// transition convolution.
func collapseColumn(column []float64, nrPaths int) (rowSums, colSums []float64, total float64) {
	rowSums = make([]float64, nrPaths)
	colSums = make([]float64, nrPaths)
	for i := 0; i < nrPaths; i++ {
		row := column[i*nrPaths : (i+1)*nrPaths]
		rowSums[i] = floats.Sum(row)
		for j, value := range row {
			colSums[j] += value
		}
	}
	return rowSums, colSums, floats.Sum(rowSums)
}

// convolve applies the factorized Li-Stephens transition to a column:
// for each target pair (i,j), the sum over all source pairs weighted by the
// product of the two per-haplotype transitions. This keeps the per-column
// cost quadratic in the number of paths instead of quartic.
func convolve(column []float64, nrPaths int, transition *TransitionProbabilityComputer) []float64 {
	result := make([]float64, len(column))
	if transition.Uniform() {
		total := floats.Sum(column)
		for s := range result {
			result[s] = total
		}
		return result
	}
	rowSums, colSums, total := collapseColumn(column, nrPaths)
	noRecomb, recomb := transition.HaplotypeProbabilities()
	stay := noRecomb - recomb
	for i := 0; i < nrPaths; i++ {
		for j := 0; j < nrPaths; j++ {
			s := i*nrPaths + j
			result[s] = stay*stay*column[s] + stay*recomb*(rowSums[i]+colSums[j]) + recomb*recomb*total
		}
	}
	return result
}

// computeForward fills the scaled forward columns. A column that receives
// no probability mass at all restarts from a flat column and flags its
// variant.
func (hmm *HMM) computeForward() {
	nrPaths := len(hmm.paths)
	nrStates := nrPaths * nrPaths
	hmm.forwardColumns = make([][]float64, len(hmm.uniqueKmers))
	var previous []float64
	for t := range hmm.uniqueKmers {
		var column []float64
		if t == 0 {
			column = make([]float64, nrStates)
			for s := range column {
				column[s] = 1
			}
		} else {
			column = convolve(previous, nrPaths, hmm.transitions[t-1])
		}
		alleles := hmm.alleles[t]
		emission := hmm.emissions[t]
		for i := 0; i < nrPaths; i++ {
			for j := 0; j < nrPaths; j++ {
				column[i*nrPaths+j] *= emission.Probability(alleles[i], alleles[j])
			}
		}
		if sum := floats.Sum(column); sum > 0 {
			floats.Scale(1/sum, column)
		} else {
			hmm.results[t].MarkDegenerate()
			flat := 1 / float64(nrStates)
			for s := range column {
				column[s] = flat
			}
		}
		hmm.forwardColumns[t] = column
		previous = column
	}
}

// computeBackwardPosteriors runs the scaled backward pass and combines each
// backward column with the stored forward column into per-variant genotype
// posteriors. Only the current backward column is kept.
func (hmm *HMM) computeBackwardPosteriors() {
	nrPaths := len(hmm.paths)
	nrStates := nrPaths * nrPaths
	backward := make([]float64, nrStates)
	for s := range backward {
		backward[s] = 1
	}
	for t := len(hmm.uniqueKmers) - 1; t >= 0; t-- {
		hmm.computePosteriors(t, backward)
		if t == 0 {
			break
		}
		// fold the emissions of column t into the backward column before
		// transitioning to column t-1
		weighted := make([]float64, nrStates)
		alleles := hmm.alleles[t]
		emission := hmm.emissions[t]
		for i := 0; i < nrPaths; i++ {
			for j := 0; j < nrPaths; j++ {
				s := i*nrPaths + j
				weighted[s] = emission.Probability(alleles[i], alleles[j]) * backward[s]
			}
		}
		backward = convolve(weighted, nrPaths, hmm.transitions[t-1])
		if sum := floats.Sum(backward); sum > 0 {
			floats.Scale(1/sum, backward)
		} else {
			flat := 1 / float64(nrStates)
			for s := range backward {
				backward[s] = flat
			}
		}
	}
}

// computePosteriors normalizes the pointwise product of the forward and
// backward columns of variant t and aggregates the state posteriors into
// genotype posteriors. A degenerate column gets a uniform posterior over
// the genotypes observed at the variant.
func (hmm *HMM) computePosteriors(t int, backward []float64) {
	nrPaths := len(hmm.paths)
	alleles := hmm.alleles[t]
	result := hmm.results[t]
	forward := hmm.forwardColumns[t]
	var sum float64
	for s := range forward {
		sum += forward[s] * backward[s]
	}
	if sum <= 0 || result.Degenerate() {
		result.MarkDegenerate()
		observed := make(map[Genotype]bool)
		for i := 0; i < nrPaths; i++ {
			for j := 0; j < nrPaths; j++ {
				observed[NewGenotype(alleles[i], alleles[j])] = true
			}
		}
		result.setUniform(observed)
		return
	}
	for i := 0; i < nrPaths; i++ {
		for j := 0; j < nrPaths; j++ {
			s := i*nrPaths + j
			result.AddToLikelihood(alleles[i], alleles[j], forward[s]*backward[s]/sum)
		}
	}
}

// computeViterbi runs the max-product pass in log space, with backpointers,
// and writes the phased haplotype alleles of the traceback into the
// results. Ties resolve to the lexicographically smallest state. A column
// with no positive-probability state is left unphased and the chain
// restarts behind it.
func (hmm *HMM) computeViterbi() {
	nrVariants := len(hmm.uniqueKmers)
	nrPaths := len(hmm.paths)
	nrStates := nrPaths * nrPaths
	backpointers := make([][]int32, nrVariants)
	unphased := make([]bool, nrVariants)

	column := hmm.logEmissionColumn(0)
	if allNegInf(column) {
		unphased[0] = true
		for s := range column {
			column[s] = 0
		}
	}
	for t := 1; t < nrVariants; t++ {
		logEmission := hmm.logEmissionColumn(t)
		next := make([]float64, nrStates)
		pointers := make([]int32, nrStates)
		transition := hmm.transitions[t-1]
		var logNoRecomb, logRecomb float64
		if !transition.Uniform() {
			noRecomb, recomb := transition.HaplotypeProbabilities()
			logNoRecomb = math.Log(noRecomb)
			logRecomb = math.Log(recomb)
		}
		// the best predecessor of each state, ties going to the
		// lexicographically smallest pair
		for i := 0; i < nrPaths; i++ {
			for j := 0; j < nrPaths; j++ {
				s := i*nrPaths + j
				best := math.Inf(-1)
				bestState := int32(0)
				for pi := 0; pi < nrPaths; pi++ {
					for pj := 0; pj < nrPaths; pj++ {
						p := pi*nrPaths + pj
						value := column[p]
						if math.IsInf(value, -1) {
							continue
						}
						if !transition.Uniform() {
							if pi == i {
								value += logNoRecomb
							} else {
								value += logRecomb
							}
							if pj == j {
								value += logNoRecomb
							} else {
								value += logRecomb
							}
						}
						if value > best {
							best = value
							bestState = int32(p)
						}
					}
				}
				next[s] = logEmission[s] + best
				pointers[s] = bestState
			}
		}
		if allNegInf(next) {
			// restart the chain at this column
			restartAt := int32(argmax(column))
			copy(next, logEmission)
			for s := range pointers {
				pointers[s] = restartAt
			}
			if allNegInf(next) {
				unphased[t] = true
				for s := range next {
					next[s] = 0
				}
			}
		}
		// rescale to keep the log values bounded
		if best := next[argmax(next)]; !math.IsInf(best, -1) {
			for s := range next {
				next[s] -= best
			}
		}
		backpointers[t] = pointers
		column = next
	}

	state := argmax(column)
	for t := nrVariants - 1; t >= 0; t-- {
		if !unphased[t] {
			alleles := hmm.alleles[t]
			hmm.results[t].SetHaplotypes(alleles[state/nrPaths], alleles[state%nrPaths])
		}
		if t > 0 {
			state = int(backpointers[t][state])
		}
	}
}

func (hmm *HMM) logEmissionColumn(t int) []float64 {
	nrPaths := len(hmm.paths)
	column := make([]float64, nrPaths*nrPaths)
	alleles := hmm.alleles[t]
	emission := hmm.emissions[t]
	for i := 0; i < nrPaths; i++ {
		for j := 0; j < nrPaths; j++ {
			column[i*nrPaths+j] = math.Log(emission.Probability(alleles[i], alleles[j]))
		}
	}
	return column
}

func allNegInf(column []float64) bool {
	for _, value := range column {
		if !math.IsInf(value, -1) {
			return false
		}
	}
	return true
}

// argmax returns the index of the maximum, ties going to the smallest
// index.
func argmax(column []float64) int {
	best := 0
	for s := 1; s < len(column); s++ {
		if column[s] > column[best] {
			best = s
		}
	}
	return best
}
