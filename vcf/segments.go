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

package vcf

import (
	"bufio"
	"fmt"
	"os"

	"github.com/yonghaoy/pangenie/fasta"
)

// WritePathSegments writes the sequences the genomic k-mers are counted
// on: every variant allele embedded in kmerSize-1 bases of reference
// context, and the reference segments between variants. The reference
// segments stop exactly at the variant boundaries; every window across a
// junction overlaps the variant and is already covered by its allele
// segments.
func (reader *PanelReader) WritePathSegments(reference *fasta.Reference, kmerSize int, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		nerr := f.Close()
		if err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(f)

	flank := kmerSize - 1
	for _, chrom := range reader.chromosomes {
		contig, ok := reference.Contig(chrom)
		if !ok {
			return fmt.Errorf("chromosome %v of %v is missing from the reference", chrom, reader.filename)
		}
		previousEnd := 0
		for _, variant := range reader.variants[chrom] {
			start := variant.Pos - 1
			end := start + len(variant.Ref)
			if start < previousEnd {
				return fmt.Errorf("variant %v:%v overlaps the previous variant", chrom, variant.Pos)
			}
			if end > len(contig) {
				return fmt.Errorf("variant %v:%v reaches beyond the end of the contig", chrom, variant.Pos)
			}
			writeReferenceSegment(out, chrom, contig, previousEnd, start)
			for allele := 0; allele < variant.NrAlleles(); allele++ {
				name := fmt.Sprintf("%v_%v_%v", chrom, variant.Pos, allele)
				fasta.WriteRecordString(out, name, variant.Segment(contig, allele, flank))
			}
			previousEnd = end
		}
		writeReferenceSegment(out, chrom, contig, previousEnd, len(contig))
	}
	return out.Flush()
}

func writeReferenceSegment(out *bufio.Writer, chrom string, contig []byte, start, end int) {
	if end <= start {
		return
	}
	name := fmt.Sprintf("%v_%v_%v_reference", chrom, start, end)
	fasta.WriteRecord(out, name, contig[start:end])
}
