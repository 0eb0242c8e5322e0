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

package app

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"recode/recoder"
	"recode/utils"
	"strings"
)

//Bulk recoding of diagnosis data.

// RecodeDiagnoses reads a TriNetX-style diagnosis csv file and writes a csv
// file that maps every ICD-10 diagnosis onto its recode chain. The input
// layout is patient_id, encounter_id, code_system, code, ..., date; diagnoses
// whose code system is not ICD-10-CM are skipped, as are codes that do not
// parse as a singular ICD-10 group. The output has one line per recoded
// diagnosis: patient_id, code, recode chain from most general to most specific
// joined with "|".
func RecodeDiagnoses(diagnosesFile, outputFile string, rec *recoder.Recoder[recoder.ICD10]) error {
	file, err := os.Open(diagnosesFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			panic(err)
		}
	}()
	reader := csv.NewReader(file)
	pids := []string{}
	codes := []string{}
	ctr := 0       //for counting the number of parsed diagnoses
	ctrNonICD := 0 //diagnoses in another coding system
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		ctr++
		if len(record) < 4 || record[2] != "ICD-10-CM" {
			ctrNonICD++
			continue
		}
		pids = append(pids, record[0])
		codes = append(codes, record[3])
	}
	// recode all collected diagnoses in parallel; the tree is read-only
	recoded, errs := rec.GetCodesAll(codes)
	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			panic(err)
		}
	}()
	writer := bufio.NewWriter(out)
	ctrInvalid := 0   //codes that do not parse as a singular ICD-10 group
	ctrUnmatched := 0 //valid codes no recode contains
	maxDepth := 0     //deepest recode chain seen
	for i, chain := range recoded {
		if errs[i] != nil {
			if errors.Is(errs[i], recoder.ErrInvalidGroup) {
				ctrInvalid++
				continue
			}
			return errs[i]
		}
		if len(chain) == 0 {
			ctrUnmatched++
			continue
		}
		maxDepth = utils.MaxInt(maxDepth, len(chain))
		fmt.Fprintf(writer, "%s,%s,%s\n", pids[i], codes[i], strings.Join(chain, "|"))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	fmt.Println("Recoded diagnosis data.")
	fmt.Print("Parsed ", ctr, " diagnoses ")
	fmt.Println("of which ", ctrNonICD, " in another coding system, ", ctrInvalid, " with invalid ICD-10 codes, and ",
		ctrUnmatched, " not covered by the recode table.")
	fmt.Println("Wrote ", len(pids)-ctrInvalid-ctrUnmatched, " recoded diagnoses; deepest recode chain: ", maxDepth)
	return nil
}

// PrintRecodedGroups reads a text file with one query group per line, recodes
// all groups, and prints one "group -> codes" line per query to standard
// output. Empty lines are skipped; invalid groups are reported inline and do
// not stop the run.
func PrintRecodedGroups(queriesFile string, rec *recoder.Recoder[recoder.ICD10]) error {
	file, err := os.Open(queriesFile)
	if err != nil {
		return err
	}
	defer file.Close()
	groups := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			groups = append(groups, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	recoded, errs := rec.GetCodesAll(groups)
	for i, group := range groups {
		if errs[i] != nil {
			fmt.Println(group, " -> ", errs[i])
			continue
		}
		fmt.Println(group, " -> ", recoded[i])
	}
	return nil
}
