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

func TestKmerPath(t *testing.T) {
	path := NewKmerPath()
	if path.NrKmers() != 0 {
		t.Error("empty KmerPath has kmers")
	}
	path.Set(0)
	path.Set(3)
	path.Set(3)
	if path.NrKmers() != 2 {
		t.Error("KmerPath.NrKmers after Set failed")
	}
	if path.Get(0) != 1 || path.Get(1) != 0 || path.Get(2) != 0 || path.Get(3) != 1 {
		t.Error("KmerPath.Get failed")
	}
	if path.Get(1000) != 0 {
		t.Error("KmerPath.Get past the end failed")
	}
	if path.String() != "0,3" {
		t.Error("KmerPath.String failed:", path.String())
	}
}

func TestKmerPathAdd(t *testing.T) {
	path1 := NewKmerPath()
	path1.Set(0)
	path1.Set(2)
	path2 := NewKmerPath()
	path2.Set(2)
	path2.Set(3)
	assignment := path1.Add(path2, 5)
	expected := CopyNumberAssignment{1, 0, 2, 1, 0}
	if len(assignment) != len(expected) {
		t.Fatal("CopyNumberAssignment has wrong size")
	}
	for i := range expected {
		if assignment[i] != expected[i] {
			t.Error("CopyNumberAssignment failed at position", i)
		}
		if assignment[i] != path1.Get(i)+path2.Get(i) {
			t.Error("CopyNumberAssignment disagrees with Get at position", i)
		}
	}
}

func TestCopyNumber(t *testing.T) {
	cn := NewCopyNumber(0.1, 0.7, 0.2)
	if cn.Probability(0) != 0.1 || cn.Probability(1) != 0.7 || cn.Probability(2) != 0.2 {
		t.Error("CopyNumber.Probability failed")
	}
	defer func() {
		if recover() == nil {
			t.Error("CopyNumber.Probability out of range did not panic")
		}
	}()
	cn.Probability(3)
}
