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

import "testing"

// a two-allele descriptor with one kmer on each allele and one shared
func testUniqueKmers(t *testing.T) *UniqueKmers {
	uk := NewUniqueKmers(2000)
	uk.InsertEmptyAllele(0)
	uk.InsertEmptyAllele(1)
	uk.InsertPath(0, 0)
	uk.InsertPath(1, 1)
	uk.InsertPath(2, 1)
	if err := uk.InsertKmer(NewCopyNumber(0.05, 0.9, 0.05), []uint8{0}); err != nil {
		t.Fatal(err)
	}
	if err := uk.InsertKmer(NewCopyNumber(0.05, 0.9, 0.05), []uint8{1}); err != nil {
		t.Fatal(err)
	}
	if err := uk.InsertKmer(NewCopyNumber(0.0, 0.1, 0.9), []uint8{0, 1}); err != nil {
		t.Fatal(err)
	}
	return uk
}

func TestUniqueKmersInsert(t *testing.T) {
	uk := testUniqueKmers(t)
	if uk.VariantPosition() != 2000 {
		t.Error("VariantPosition failed")
	}
	if uk.Size() != 3 {
		t.Error("Size failed")
	}
	if uk.NrPaths() != 3 {
		t.Error("NrPaths failed")
	}
	if err := uk.InsertKmer(NewCopyNumber(1, 0, 0), []uint8{7}); err == nil {
		t.Error("InsertKmer accepted an undeclared allele")
	}
	if uk.Size() != 3 {
		t.Error("failed InsertKmer changed the descriptor")
	}
}

func TestUniqueKmersLookups(t *testing.T) {
	uk := testUniqueKmers(t)
	if !uk.KmerOnPath(0, 0) || uk.KmerOnPath(0, 1) || uk.KmerOnPath(0, 2) {
		t.Error("KmerOnPath kmer 0 failed")
	}
	if uk.KmerOnPath(1, 0) || !uk.KmerOnPath(1, 1) || !uk.KmerOnPath(1, 2) {
		t.Error("KmerOnPath kmer 1 failed")
	}
	if !uk.KmerOnPath(2, 0) || !uk.KmerOnPath(2, 1) {
		t.Error("KmerOnPath kmer 2 failed")
	}
	if uk.CopyNumberOf(1) != NewCopyNumber(0.05, 0.9, 0.05) {
		t.Error("CopyNumberOf failed")
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Error("KmerOnPath with unknown path did not panic")
			}
		}()
		uk.KmerOnPath(0, 17)
	}()
	func() {
		defer func() {
			if recover() == nil {
				t.Error("CopyNumberOf out of range did not panic")
			}
		}()
		uk.CopyNumberOf(3)
	}()
}

func TestUniqueKmersCombinePaths(t *testing.T) {
	uk := testUniqueKmers(t)
	assignment := uk.CombinePaths(0, 1)
	expected := CopyNumberAssignment{1, 1, 2}
	for i := range expected {
		if assignment[i] != expected[i] {
			t.Error("CombinePaths failed at position", i)
		}
	}
	hom := uk.CombinePaths(1, 1)
	if hom[0] != 0 || hom[1] != 2 || hom[2] != 2 {
		t.Error("CombinePaths of a homozygous pair failed")
	}
}

func TestUniqueKmersPathIDs(t *testing.T) {
	uk := testUniqueKmers(t)
	paths, alleles := uk.PathIDs(nil)
	if len(paths) != 3 || paths[0] != 0 || paths[1] != 1 || paths[2] != 2 {
		t.Error("PathIDs order failed")
	}
	if alleles[0] != 0 || alleles[1] != 1 || alleles[2] != 1 {
		t.Error("PathIDs alleles failed")
	}
	paths, alleles = uk.PathIDs([]int{2, 0, 9})
	if len(paths) != 2 || paths[0] != 0 || paths[1] != 2 {
		t.Error("filtered PathIDs failed")
	}
	if alleles[0] != 0 || alleles[1] != 1 {
		t.Error("filtered PathIDs alleles failed")
	}
}

func TestUniqueKmersKmersOnAlleles(t *testing.T) {
	uk := testUniqueKmers(t)
	counts := uk.KmersOnAlleles()
	if counts[0] != 2 || counts[1] != 2 {
		t.Error("KmersOnAlleles failed")
	}
	uk.SetCoverage(14.5)
	if uk.Coverage() != 14.5 {
		t.Error("Coverage roundtrip failed")
	}
}
