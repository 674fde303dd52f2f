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

package kmers

import (
	"bufio"
	"fmt"
	"log"

	"github.com/yonghaoy/pangenie/internal"
)

// DefaultTrainingFraction is the fraction of eligible k-mers sampled when
// training the count correction model.
const DefaultTrainingFraction = 0.1

const nrBuckets = 10

// a covariate classifies a k-mer by its GC content and its small-k
// complexity, each discretized into nrBuckets buckets
type covariate struct {
	gc, complexity int
}

// A correctionModel scales raw read counts by per-covariate factors
// trained on k-mers that occur exactly once in the genome.
type correctionModel struct {
	smallKmerSize int
	factors       map[covariate]float64
}

func (model *correctionModel) factor(kmer uint64, kmerSize int) float64 {
	if f, ok := model.factors[covariateOf(kmer, kmerSize, model.smallKmerSize)]; ok && f > 0 {
		return f
	}
	return 1
}

// covariateOf computes the covariate of a 2-bit encoded k-mer: the GC
// bucket, and the fraction of distinct small-k words among its windows.
func covariateOf(kmer uint64, kmerSize, smallKmerSize int) covariate {
	gc := 0
	for i, k := 0, kmer; i < kmerSize; i++ {
		if code := k & 3; code == 1 || code == 2 {
			gc++
		}
		k >>= 2
	}
	nrWindows := kmerSize - smallKmerSize + 1
	if nrWindows < 1 {
		nrWindows = 1
	}
	smallMask := (uint64(1) << uint(2*smallKmerSize)) - 1
	distinct := make(map[uint64]bool, nrWindows)
	for i, k := 0, kmer; i < nrWindows; i++ {
		distinct[k&smallMask] = true
		k >>= 2
	}
	return covariate{
		gc:         gc * (nrBuckets - 1) / kmerSize,
		complexity: len(distinct) * (nrBuckets - 1) / nrWindows,
	}
}

// mixing constant of the deterministic training sample
const sampleHashMultiplier = 0x9E3779B97F4A7C15

func sampledForTraining(kmer uint64, fraction float64) bool {
	return float64((kmer*sampleHashMultiplier)%1000) < fraction*1000
}

// CorrectCounts trains the count correction model: k-mers that occur
// exactly once in the genome are expected at the abundance peak, so the
// mean observed read count per covariate class yields a scaling factor.
// A training fraction of the eligible k-mers is sampled; the per-class
// statistics are written to trainingFile. Subsequent CorrectedAbundance
// queries apply the model.
func (counter *KmerCounter) CorrectCounts(genomic *KmerCounter, peak int, smallKmerSize int, trainingFraction float64, trainingFile string) {
	type stats struct {
		nrKmers uint64
		total   uint64
	}
	training := make(map[covariate]*stats)
	for s := range genomic.shards {
		shard := &genomic.shards[s]
		for kmer, count := range shard.counts {
			if count != 1 || !sampledForTraining(kmer, trainingFraction) {
				continue
			}
			observed := counter.Abundance(kmer)
			if observed == 0 {
				continue
			}
			c := covariateOf(kmer, counter.kmerSize, smallKmerSize)
			st := training[c]
			if st == nil {
				st = new(stats)
				training[c] = st
			}
			st.nrKmers++
			st.total += uint64(observed)
		}
	}

	model := &correctionModel{
		smallKmerSize: smallKmerSize,
		factors:       make(map[covariate]float64, len(training)),
	}
	for c, st := range training {
		mean := float64(st.total) / float64(st.nrKmers)
		if mean > 0 {
			model.factors[c] = float64(peak) / mean
		}
	}

	f := internal.FileCreate(trainingFile)
	defer internal.Close(f)
	out := bufio.NewWriter(f)
	fmt.Fprintln(out, "gc\tcomplexity\tkmers\tmean\tfactor")
	for c, st := range training {
		mean := float64(st.total) / float64(st.nrKmers)
		fmt.Fprintf(out, "%v\t%v\t%v\t%v\t%v\n", c.gc, c.complexity, st.nrKmers, mean, model.factors[c])
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}

	counter.model = model
}
