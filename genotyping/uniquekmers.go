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
	"log"
	"strings"
)

// UniqueKmers collects the k-mers that discriminate the alleles of a single
// variant: the copy number likelihoods observed for each k-mer, which
// alleles each k-mer lies on, the allele each panel path carries at the
// variant, and the local k-mer coverage. A UniqueKmers value is filled once
// by the unique k-mer computation and not mutated afterwards.
type UniqueKmers struct {
	variantPos       int
	currentIndex     int
	kmerToCopyNumber []CopyNumber
	alleles          map[uint8]KmerPath
	alleleOrder      []uint8
	pathToAllele     map[int]uint8
	pathOrder        []int
	localCoverage    float64
}

// NewUniqueKmers creates an empty descriptor for the variant at the given
// genomic position.
func NewUniqueKmers(variantPosition int) *UniqueKmers {
	return &UniqueKmers{
		variantPos:   variantPosition,
		alleles:      make(map[uint8]KmerPath),
		pathToAllele: make(map[int]uint8),
	}
}

// VariantPosition returns the genomic position of the variant.
func (uk *UniqueKmers) VariantPosition() int {
	return uk.variantPos
}

// InsertEmptyAllele registers the allele with an empty k-mer path,
// replacing any previous path for that allele.
func (uk *UniqueKmers) InsertEmptyAllele(allele uint8) {
	if _, ok := uk.alleles[allele]; !ok {
		uk.alleleOrder = append(uk.alleleOrder, allele)
	}
	uk.alleles[allele] = NewKmerPath()
}

// InsertPath binds the path to the allele it carries at this variant,
// replacing any previous binding.
func (uk *UniqueKmers) InsertPath(path int, allele uint8) {
	if _, ok := uk.pathToAllele[path]; !ok {
		uk.pathOrder = append(uk.pathOrder, path)
	}
	uk.pathToAllele[path] = allele
}

// InsertKmer appends a k-mer with its copy number likelihoods and marks it
// present on the given alleles. All listed alleles must have been inserted
// before.
func (uk *UniqueKmers) InsertKmer(cn CopyNumber, alleles []uint8) error {
	for _, a := range alleles {
		if _, ok := uk.alleles[a]; !ok {
			return fmt.Errorf("UniqueKmers.InsertKmer: allele %v was not inserted", a)
		}
	}
	index := uk.currentIndex
	uk.kmerToCopyNumber = append(uk.kmerToCopyNumber, cn)
	for _, a := range alleles {
		uk.alleles[a].Set(index)
	}
	uk.currentIndex++
	return nil
}

// KmerOnPath tells whether the k-mer at kmerIndex lies on the allele that
// the path carries at this variant.
func (uk *UniqueKmers) KmerOnPath(kmerIndex, path int) bool {
	allele, ok := uk.pathToAllele[path]
	if !ok {
		log.Panicf("UniqueKmers.KmerOnPath: path %v does not exist", path)
	}
	if kmerIndex < 0 || kmerIndex >= uk.currentIndex {
		log.Panicf("UniqueKmers.KmerOnPath: requested kmer index %v does not exist", kmerIndex)
	}
	return uk.alleles[allele].Get(kmerIndex) > 0
}

// CopyNumberOf returns the copy number likelihoods observed for the k-mer
// at kmerIndex.
func (uk *UniqueKmers) CopyNumberOf(kmerIndex int) CopyNumber {
	if kmerIndex < 0 || kmerIndex >= uk.currentIndex {
		log.Panicf("UniqueKmers.CopyNumberOf: requested kmer index %v does not exist", kmerIndex)
	}
	return uk.kmerToCopyNumber[kmerIndex]
}

// CombinePaths sums the positional k-mer presence of two alleles.
func (uk *UniqueKmers) CombinePaths(allele1, allele2 uint8) CopyNumberAssignment {
	path1, ok := uk.alleles[allele1]
	if !ok {
		log.Panicf("UniqueKmers.CombinePaths: allele %v does not exist", allele1)
	}
	path2, ok := uk.alleles[allele2]
	if !ok {
		log.Panicf("UniqueKmers.CombinePaths: allele %v does not exist", allele2)
	}
	return path1.Add(path2, uk.currentIndex)
}

// PathIDs returns the panel paths and their alleles in panel order. If
// onlyInclude is non-nil, paths not listed there are skipped.
func (uk *UniqueKmers) PathIDs(onlyInclude []int) (paths []int, alleles []uint8) {
	var include map[int]bool
	if onlyInclude != nil {
		include = make(map[int]bool, len(onlyInclude))
		for _, p := range onlyInclude {
			include[p] = true
		}
	}
	for _, p := range uk.pathOrder {
		if include != nil && !include[p] {
			continue
		}
		paths = append(paths, p)
		alleles = append(alleles, uk.pathToAllele[p])
	}
	return paths, alleles
}

// AlleleIDs returns the alleles in insertion order.
func (uk *UniqueKmers) AlleleIDs() []uint8 {
	return uk.alleleOrder
}

// Size returns the number of k-mers inserted.
func (uk *UniqueKmers) Size() int {
	return uk.currentIndex
}

// NrPaths returns the number of panel paths bound at this variant.
func (uk *UniqueKmers) NrPaths() int {
	return len(uk.pathOrder)
}

// KmersOnAlleles counts the k-mers per allele.
func (uk *UniqueKmers) KmersOnAlleles() map[uint8]int {
	result := make(map[uint8]int, len(uk.alleleOrder))
	for _, a := range uk.alleleOrder {
		result[a] = uk.alleles[a].NrKmers()
	}
	return result
}

// SetCoverage stores the local haploid k-mer coverage around the variant.
func (uk *UniqueKmers) SetCoverage(localCoverage float64) {
	uk.localCoverage = localCoverage
}

// Coverage returns the local haploid k-mer coverage around the variant.
func (uk *UniqueKmers) Coverage() float64 {
	return uk.localCoverage
}

// String renders the full descriptor for diagnostic output.
func (uk *UniqueKmers) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "UniqueKmers for variant:", uk.variantPos)
	for i := 0; i < uk.currentIndex; i++ {
		cn := uk.kmerToCopyNumber[i]
		fmt.Fprintln(&b, i, ":", cn.Probability(0), cn.Probability(1), cn.Probability(2))
	}
	fmt.Fprintln(&b, "alleles:")
	for _, a := range uk.alleleOrder {
		fmt.Fprintf(&b, "%v\t%v\n", a, uk.alleles[a])
	}
	fmt.Fprintln(&b, "paths:")
	for _, p := range uk.pathOrder {
		fmt.Fprintln(&b, p, "covers allele", uk.pathToAllele[p])
	}
	return b.String()
}
