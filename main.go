// RECODE: Cause-of-Death Recoding Library
// Copyright (c) 2022 imec vzw.

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
// <https://github.com/ExaScience/recode/blob/master/LICENSE.txt>.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"recode/app"
	"recode/recoder"
	"recode/utils"
	"runtime"
	"strings"
)

/*
Recode is a tool for converting ICD-10 diagnosis codes into aggregated
cause-of-death codes defined by a hierarchical recode table.

Usage:
	recode tableFile [flags]

Example:
	recode "tables/358 ICD-10 Recodes.txt" --query "G20" --print
	recode "tables/358 ICD-10 Recodes.txt" --diagnoses diagnosis.csv --output recoded.csv --verify 10000

The flags are:

--query group
	Recode a single group of codes, e.g. "A01-A10, C90-C99". A group contains
	one or more ranges of codes; a range can be singular (G20 <=> G20-G20). The
	result is the chain of recode codes that contain the group, from the most
	general recode to the most specific one.
--queries file
	A text file with one query group per line. All groups are recoded in
	parallel and printed to standard output.
--diagnoses file
	A TriNetX-style diagnosis csv file. Every ICD-10 diagnosis in the file is
	recoded; diagnoses in other coding systems are skipped.
--output file
	The csv file the recoded diagnoses are written to. Required with
	--diagnoses.
--patterns file
	A yaml file that overrides parts of the built-in ICD-10 pattern bundle
	(line/group/range patterns and the code span of the root). This adapts the
	tool to recode tables with a different line syntax.
--print
	Print the full recode tree instead of only the first recodes.
--verify nr
	Run nr random spot checks after loading: each check samples a recode and
	one of its ranges and resolves the range's first code back through the
	tree. Failures indicate recodes shadowed by overlapping sibling groups.
--nrOfThreads nr
	The number of threads recode uses.
*/

const (
	programVersion = 0.1
	programName    = "recode"
)

func programMessage() string {
	return fmt.Sprint(programName, " version ", programVersion, " compiled with ", runtime.Version())
}

const recodeHelp = "\nrecode parameters:\n" +
	"recode tableFile \n" +
	"[--query group]\n" +
	"[--queries file]\n" +
	"[--diagnoses file]\n" +
	"[--output file]\n" +
	"[--patterns file]\n" +
	"[--print]\n" +
	"[--verify nr]\n" +
	"[--nrOfThreads nr]\n"

func parseFlags(flags flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(ioutil.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprint(os.Stderr, err)
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprint(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

func getFileName(s, help string) string {
	switch s {
	case "-h", "--h", "-help", "--help":
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	return s
}

func main() {
	var (
		// required parameters
		tableFile string //The file with the recode table.
		// optional flags
		query       string
		queries     string
		diagnoses   string
		output      string
		patternsCfg string
		printTree   bool
		verify      int
		nrOfThreads int
	)
	var flags flag.FlagSet
	// options for the recode command
	flags.StringVar(&query, "query", "", "A group of codes to recode, e.g. \"A01-A10, C90-C99\".")
	flags.StringVar(&queries, "queries", "", "A text file with one query group per line.")
	flags.StringVar(&diagnoses, "diagnoses", "", "A diagnosis csv file whose ICD-10 diagnoses are recoded.")
	flags.StringVar(&output, "output", "", "The csv file the recoded diagnoses are written to.")
	flags.StringVar(&patternsCfg, "patterns", "", "A yaml file that overrides the built-in ICD-10 pattern "+
		"bundle.")
	flags.BoolVar(&printTree, "print", false, "Print the full recode tree.")
	flags.IntVar(&verify, "verify", 0, "The number of random spot checks to run against the loaded tree.")
	flags.IntVar(&nrOfThreads, "nrOfThreads", 0, "The number of threads recode uses.")
	// parse optional arguments
	parseFlags(flags, 2, recodeHelp)
	// parse required arguments
	tableFile = getFileName(os.Args[1], recodeHelp)
	// build an output command line
	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " ", tableFile)
	if query != "" {
		fmt.Fprint(&command, " --query ", query)
	}
	if queries != "" {
		fmt.Fprint(&command, " --queries ", queries)
	}
	if diagnoses != "" {
		fmt.Fprint(&command, " --diagnoses ", diagnoses)
		fmt.Fprint(&command, " --output ", output)
	}
	if patternsCfg != "" {
		fmt.Fprint(&command, " --patterns ", patternsCfg)
	}
	if printTree {
		fmt.Fprint(&command, " --print")
	}
	if verify > 0 {
		fmt.Fprint(&command, " --verify ", verify)
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nrOfThreads ", nrOfThreads)
	}
	// start execution
	log.Println(programMessage())
	log.Println("Executing command:\n", command.String())
	//1. Load the pattern bundle
	patterns := recoder.ICD10ToInteger()
	if patternsCfg != "" {
		var err error
		if patterns, err = app.LoadICD10Patterns(patternsCfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	//2. Parse the recode table into a tree
	rec, err := app.LoadRecoder(tableFile, patterns)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lines := strings.Split(strings.TrimRight(rec.String(), "\n"), "\n")
	fmt.Println("Parsed ", len(lines)-1, " recodes.")
	if printTree {
		fmt.Print(rec)
	} else {
		fmt.Println("First recodes: ")
		for i := 0; i < utils.MinInt(len(lines), 6); i++ {
			fmt.Println(lines[i])
		}
	}
	//3. Spot check the tree
	if verify > 0 {
		failures := rec.Verify(verify)
		fmt.Println("Verified ", verify, " samples with ", failures, " failures.")
	}
	//4. Run the queries
	if query != "" {
		codes, err := rec.GetCodes(query)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(query, " -> ", codes)
	}
	if queries != "" {
		if err := app.PrintRecodedGroups(queries, rec); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	//5. Recode diagnosis data in bulk
	if diagnoses != "" {
		if output == "" {
			fmt.Fprintln(os.Stderr, "--diagnoses requires --output.")
			fmt.Fprint(os.Stderr, recodeHelp)
			os.Exit(1)
		}
		if err := app.RecodeDiagnoses(diagnoses, output, rec); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
