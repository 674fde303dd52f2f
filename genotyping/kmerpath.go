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
	"fmt"
	"strings"

	"github.com/willf/bitset"
)

type (
	// A KmerPath marks which k-mer positions of a UniqueKmers descriptor
	// are present on one allele.
	KmerPath struct {
		positions *bitset.BitSet
	}

	// A CopyNumberAssignment holds, per k-mer position, how many copies of
	// the k-mer a pair of alleles carries (0, 1, or 2).
	CopyNumberAssignment []int
)

// NewKmerPath creates an empty path.
func NewKmerPath() KmerPath {
	return KmerPath{positions: bitset.New(64)}
}

// Set marks the k-mer at the given position as present on this path.
func (path KmerPath) Set(position int) {
	path.positions.Set(uint(position))
}

// Get returns 1 if the k-mer at the given position is present, 0 otherwise.
func (path KmerPath) Get(position int) int {
	if path.positions.Test(uint(position)) {
		return 1
	}
	return 0
}

// NrKmers returns the number of k-mers present on this path.
func (path KmerPath) NrKmers() int {
	return int(path.positions.Count())
}

// Add sums the positional presence of two paths over the first size
// positions.
func (path KmerPath) Add(other KmerPath, size int) CopyNumberAssignment {
	result := make(CopyNumberAssignment, size)
	for i := 0; i < size; i++ {
		result[i] = path.Get(i) + other.Get(i)
	}
	return result
}

// String lists the present positions, for diagnostic output.
func (path KmerPath) String() string {
	var b strings.Builder
	for i, e := path.positions.NextSet(0); e; i, e = path.positions.NextSet(i + 1) {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		fmt.Fprint(&b, i)
	}
	return b.String()
}
