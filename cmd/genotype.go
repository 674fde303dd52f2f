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

package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/yonghaoy/pangenie/fasta"
	"github.com/yonghaoy/pangenie/genotyping"
	"github.com/yonghaoy/pangenie/kmers"
	"github.com/yonghaoy/pangenie/utils"
	"github.com/yonghaoy/pangenie/vcf"
)

// GenotypeHelp is the help string for the pangenie genotype command.
const GenotypeHelp = "genotype parameters:\n" +
	"pangenie genotype -i reads.fa/fq -r reference.fa -v variants.vcf\n" +
	"[-o prefix-of-the-output-files]\n" +
	"[-k kmer-size]\n" +
	"[-s sample-name]\n" +
	"[-j nr-kmer-counting-threads]\n" +
	"[-t nr-core-threads]\n" +
	"[-n effective-population-size]\n" +
	"[-m small-kmer-size]\n" +
	"[-g only-run-genotyping]\n" +
	"[-p only-run-phasing]\n"

// recombination rates in cM/Mb; the genotyping rate follows the original
// genotyper and is deliberately not re-derived
const (
	genotypingRecombRate = 1.26
	phasingRecombRate    = 1.0
)

const histogramMax = 10000

// Genotype implements the genotype command: it counts and corrects the
// k-mers of the sequencing reads, builds the per-variant unique k-mer
// descriptors, decodes every chromosome with the HMM, and writes the
// genotyping and phasing VCFs.
func Genotype() error {
	var (
		readsFile, refFile, vcfFile string
		outPrefix, sampleName       string
		kmerSize, smallKmerSize     int
		kmerThreads, coreThreads    int
		effectiveN                  float64
		onlyGenotyping, onlyPhasing bool
	)

	var flags flag.FlagSet
	flags.StringVar(&readsFile, "i", "", "sequencing reads in FASTA/FASTQ format")
	flags.StringVar(&refFile, "r", "", "reference genome in FASTA format")
	flags.StringVar(&vcfFile, "v", "", "variants in VCF format")
	flags.StringVar(&outPrefix, "o", "result", "prefix of the output files")
	flags.StringVar(&sampleName, "s", "sample", "name of the sample (will be used in the output VCFs)")
	flags.IntVar(&kmerSize, "k", 31, "kmer size")
	flags.IntVar(&smallKmerSize, "m", 5, "small kmer size used for count correction")
	flags.IntVar(&kmerThreads, "j", 1, "number of threads to use for kmer counting")
	flags.IntVar(&coreThreads, "t", 1, "number of threads to use for core algorithms")
	flags.Float64Var(&effectiveN, "n", 25000, "effective population size")
	flags.BoolVar(&onlyGenotyping, "g", false, "only run genotyping (Forward backward algorithm)")
	flags.BoolVar(&onlyPhasing, "p", false, "only run phasing (Viterbi algorithm)")
	parseFlags(flags, 2, GenotypeHelp)

	ok := checkExist("-i", readsFile)
	ok = checkExist("-r", refFile) && ok
	ok = checkExist("-v", vcfFile) && ok
	ok = checkCreate("-o", outPrefix+"_genotyping.vcf") && ok
	if kmerSize < 1 || kmerSize > kmers.MaxKmerSize {
		log.Printf("Error: Invalid kmer size %v, must be in [1,%v].\n", kmerSize, kmers.MaxKmerSize)
		ok = false
	}
	if smallKmerSize < 1 || smallKmerSize > kmerSize {
		log.Printf("Error: Invalid small kmer size %v.\n", smallKmerSize)
		ok = false
	}
	if kmerThreads < 1 || coreThreads < 1 {
		log.Println("Error: Thread counts must be at least 1.")
		ok = false
	}
	if onlyGenotyping && onlyPhasing {
		log.Println("Error: -g and -p exclude each other.")
		ok = false
	}
	if !ok {
		fmt.Fprint(os.Stderr, GenotypeHelp)
		os.Exit(1)
	}

	runtime.GOMAXPROCS(coreThreads)
	timer := newPhaseTimer()

	log.Println("Determine allele sequences ...")
	reference, err := fasta.ReadReference(refFile)
	if err != nil {
		return err
	}
	panel, err := vcf.NewPanelReader(vcfFile)
	if err != nil {
		return err
	}
	chromosomes := panel.Chromosomes()
	log.Printf("Found %v chromosome(s) in the VCF.\n", len(chromosomes))

	segmentsFile := outPrefix + "_path_segments.fasta"
	log.Println("Write path segments to file:", segmentsFile, "...")
	if err := panel.WritePathSegments(reference, kmerSize, segmentsFile); err != nil {
		return err
	}

	timePreprocessing := timer.intervalTime()

	log.Println("Count kmers in reads ...")
	var readCounts, genomicCounts *kmers.KmerCounter
	var readErr, genomicErr error
	parallel.Do(
		func() { readCounts, readErr = kmers.NewKmerCounter(readsFile, kmerSize, kmerThreads) },
		func() { genomicCounts, genomicErr = kmers.NewKmerCounter(segmentsFile, kmerSize, kmerThreads) },
	)
	if readErr != nil {
		return readErr
	}
	if genomicErr != nil {
		return genomicErr
	}
	peak := readCounts.Histogram(histogramMax, outPrefix+"_histogram.histo")
	log.Println("Computed kmer abundance peak:", peak)

	log.Println("Correct kmer counts ...")
	readCounts.CorrectCounts(genomicCounts, peak, smallKmerSize, kmers.DefaultTrainingFraction, segmentsFile+".train")
	correctedPeak := readCounts.Histogram(histogramMax, outPrefix+"_corrected-histogram.histo")
	log.Println("Computed corrected kmer abundance peak:", correctedPeak)

	timeKmerCounting := timer.intervalTime()

	recombRate := genotypingRecombRate
	if onlyPhasing {
		recombRate = phasingRecombRate
	}

	// chromosomes are processed in parallel; the results buffer is only
	// locked at insert time, and the output is written in the declared
	// chromosome order after all workers have joined
	results := make(map[string][]*genotyping.GenotypingResult)
	var mutex sync.Mutex
	var workerErr error
	parallel.Range(0, len(chromosomes), len(chromosomes), func(low, high int) {
		for c := low; c < high; c++ {
			chromosome := chromosomes[c]
			err := func() (err error) {
				defer func() {
					if p := recover(); p != nil {
						err = fmt.Errorf("chromosome %v failed: %v", chromosome, p)
					}
				}()
				log.Printf("Processing chromosome %v.\n", chromosome)
				contig, ok := reference.Contig(chromosome)
				if !ok {
					return fmt.Errorf("chromosome %v of %v is missing from the reference", chromosome, vcfFile)
				}
				log.Println("Determine unique kmers ...")
				computer := genotyping.NewUniqueKmerComputer(genomicCounts, readCounts, panel.VariantsOf(chromosome), contig, correctedPeak)
				uniqueKmers := computer.Compute()
				log.Println("Construct HMM")
				hmm := genotyping.NewHMM(uniqueKmers, !onlyPhasing, !onlyGenotyping, recombRate, false, effectiveN)
				mutex.Lock()
				results[chromosome] = hmm.GenotypingResults()
				mutex.Unlock()
				return nil
			}()
			if err != nil {
				mutex.Lock()
				if workerErr == nil {
					workerErr = err
				}
				mutex.Unlock()
			}
		}
	})
	if workerErr != nil {
		return workerErr
	}

	timeHMM := timer.intervalTime()

	source := fmt.Sprint(utils.ProgramName, " ", utils.ProgramVersion, " run=", uuid.New())
	if !onlyPhasing {
		log.Println("Write genotyping output ...")
		if err := writeResults(outPrefix+"_genotyping.vcf", sampleName, source, true, panel, results); err != nil {
			return err
		}
	}
	if !onlyGenotyping {
		log.Println("Write phasing output ...")
		if err := writeResults(outPrefix+"_phasing.vcf", sampleName, source, false, panel, results); err != nil {
			return err
		}
	}

	log.Println("###### Summary ######")
	log.Println("time spent reading input files:", timePreprocessing)
	log.Println("time spent counting kmers:", timeKmerCounting)
	log.Println("time spent genotyping/phasing:", timeHMM)
	log.Println("total time:", timer.totalTime())
	var rusage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &rusage); err == nil {
		log.Printf("Total maximum memory usage: %v GB\n", float64(rusage.Maxrss)/1e6)
	}
	return nil
}

func writeResults(filename, sample, source string, genotypingOutput bool, panel *vcf.PanelReader, results map[string][]*genotyping.GenotypingResult) error {
	writer, err := vcf.NewOutputWriter(filename, sample, source, genotypingOutput)
	if err != nil {
		return err
	}
	for _, chromosome := range panel.Chromosomes() {
		variants := panel.VariantsOf(chromosome)
		chromResults := results[chromosome]
		for i, variant := range variants {
			if genotypingOutput {
				writer.Write(variant, genotyping.GenotypingCall(chromResults[i], variant.NrAlleles()))
			} else {
				writer.Write(variant, genotyping.PhasingCall(chromResults[i]))
			}
		}
	}
	return writer.Close()
}
