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
	"fmt"
	"sync"

	"github.com/exascience/pargo/parallel"
)

const nrShards = 256

type countShard struct {
	mutex  sync.Mutex
	counts map[uint64]uint32
}

// A KmerCounter holds the canonical k-mer counts of one sequence file. The
// shards are filled in parallel during construction; afterwards the counter
// is safe for concurrent read-only queries.
type KmerCounter struct {
	kmerSize int
	shards   [nrShards]countShard
	model    *correctionModel
}

// NewKmerCounter counts the canonical k-mers of a FASTA or FASTQ file,
// processing the sequences in nrThreads batches.
func NewKmerCounter(filename string, kmerSize, nrThreads int) (*KmerCounter, error) {
	if kmerSize < 1 || kmerSize > MaxKmerSize {
		return nil, fmt.Errorf("kmer size %v out of range [1,%v]", kmerSize, MaxKmerSize)
	}
	sequences, err := readSequences(filename)
	if err != nil {
		return nil, err
	}
	counter := &KmerCounter{kmerSize: kmerSize}
	for s := range counter.shards {
		counter.shards[s].counts = make(map[uint64]uint32)
	}
	if nrThreads < 1 {
		nrThreads = 1
	}
	parallel.Range(0, len(sequences), nrThreads, func(low, high int) {
		for i := low; i < high; i++ {
			Enumerate(sequences[i], kmerSize, counter.add)
		}
	})
	return counter, nil
}

func (counter *KmerCounter) add(kmer uint64) {
	shard := &counter.shards[kmer&(nrShards-1)]
	shard.mutex.Lock()
	shard.counts[kmer]++
	shard.mutex.Unlock()
}

// KmerSize returns the k the counter was built with.
func (counter *KmerCounter) KmerSize() int {
	return counter.kmerSize
}

// Abundance returns the raw count of a canonical k-mer.
func (counter *KmerCounter) Abundance(kmer uint64) uint32 {
	shard := &counter.shards[kmer&(nrShards-1)]
	return shard.counts[kmer]
}

// AbundanceOf returns the raw count of a k-mer given as a sequence of
// exactly KmerSize bases.
func (counter *KmerCounter) AbundanceOf(seq string) uint32 {
	kmer, ok := CanonicalOf(seq)
	if !ok || len(seq) != counter.kmerSize {
		return 0
	}
	return counter.Abundance(kmer)
}

// CorrectedAbundance returns the count of a canonical k-mer scaled by the
// trained correction model; without a model it is the raw count.
func (counter *KmerCounter) CorrectedAbundance(kmer uint64) float64 {
	count := float64(counter.Abundance(kmer))
	if counter.model == nil || count == 0 {
		return count
	}
	return count * counter.model.factor(kmer, counter.kmerSize)
}
