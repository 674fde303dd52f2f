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
	"math"

	"github.com/yonghaoy/pangenie/internal"
)

// Histogram computes the k-mer abundance histogram up to maxCount, writes
// it to filename, and returns the abundance peak: the most frequent
// abundance past the low-abundance error peak. Corrected counts are used
// when a correction model has been trained.
func (counter *KmerCounter) Histogram(maxCount int, filename string) (peak int) {
	histogram := make([]uint64, maxCount+1)
	for s := range counter.shards {
		shard := &counter.shards[s]
		for kmer := range shard.counts {
			count := int(math.Round(counter.CorrectedAbundance(kmer)))
			if count < 1 {
				continue
			}
			if count > maxCount {
				count = maxCount
			}
			histogram[count]++
		}
	}

	f := internal.FileCreate(filename)
	defer internal.Close(f)
	out := bufio.NewWriter(f)
	for count := 1; count <= maxCount; count++ {
		fmt.Fprintln(out, count, histogram[count])
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}

	return abundancePeak(histogram)
}

// abundancePeak walks down the error peak to the first valley and returns
// the most frequent abundance after it.
func abundancePeak(histogram []uint64) int {
	valley := 1
	for valley+1 < len(histogram) && histogram[valley+1] < histogram[valley] {
		valley++
	}
	peak := valley
	for count := valley; count < len(histogram); count++ {
		if histogram[count] > histogram[peak] {
			peak = count
		}
	}
	return peak
}
