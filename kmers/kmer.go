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

// Package kmers counts the canonical k-mers of sequence files and corrects
// the counts for sequence-composition bias.
package kmers

// MaxKmerSize is the largest k that fits the 2-bit encoding.
const MaxKmerSize = 31

// 2-bit base codes; -1 for anything that is not ACGT
var baseCodes [256]int8

func init() {
	for i := range baseCodes {
		baseCodes[i] = -1
	}
	baseCodes['A'], baseCodes['a'] = 0, 0
	baseCodes['C'], baseCodes['c'] = 1, 1
	baseCodes['G'], baseCodes['g'] = 2, 2
	baseCodes['T'], baseCodes['t'] = 3, 3
}

// Encode packs a sequence of up to MaxKmerSize bases into a 2-bit encoded
// k-mer. ok is false if the sequence contains a non-ACGT letter.
func Encode(seq string) (kmer uint64, ok bool) {
	for i := 0; i < len(seq); i++ {
		code := baseCodes[seq[i]]
		if code < 0 {
			return 0, false
		}
		kmer = (kmer << 2) | uint64(code)
	}
	return kmer, true
}

// Decode unpacks a 2-bit encoded k-mer of the given size.
func Decode(kmer uint64, kmerSize int) string {
	bases := make([]byte, kmerSize)
	for i := kmerSize - 1; i >= 0; i-- {
		bases[i] = "ACGT"[kmer&3]
		kmer >>= 2
	}
	return string(bases)
}

// ReverseComplement returns the reverse complement of a 2-bit encoded
// k-mer of the given size.
func ReverseComplement(kmer uint64, kmerSize int) uint64 {
	var result uint64
	for i := 0; i < kmerSize; i++ {
		result = (result << 2) | (3 ^ (kmer & 3))
		kmer >>= 2
	}
	return result
}

// Canonical returns the smaller of a k-mer and its reverse complement.
func Canonical(kmer uint64, kmerSize int) uint64 {
	if rc := ReverseComplement(kmer, kmerSize); rc < kmer {
		return rc
	}
	return kmer
}

// CanonicalOf encodes a sequence of exactly kmerSize bases into its
// canonical k-mer.
func CanonicalOf(seq string) (kmer uint64, ok bool) {
	kmer, ok = Encode(seq)
	if !ok {
		return 0, false
	}
	return Canonical(kmer, len(seq)), true
}

// Enumerate calls visit for the canonical form of every k-mer of seq.
// Windows containing a non-ACGT letter are skipped.
func Enumerate(seq string, kmerSize int, visit func(kmer uint64)) {
	if kmerSize > len(seq) {
		return
	}
	mask := (uint64(1) << uint(2*kmerSize)) - 1
	shift := uint(2 * (kmerSize - 1))
	var forward, reverse uint64
	valid := 0
	for i := 0; i < len(seq); i++ {
		code := baseCodes[seq[i]]
		if code < 0 {
			valid = 0
			forward, reverse = 0, 0
			continue
		}
		forward = ((forward << 2) | uint64(code)) & mask
		reverse = (reverse >> 2) | (uint64(3^code) << shift)
		valid++
		if valid >= kmerSize {
			if reverse < forward {
				visit(reverse)
			} else {
				visit(forward)
			}
		}
	}
}
