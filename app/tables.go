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
	"fmt"
	"os"
	"recode/recoder"
	"regexp"

	"gopkg.in/yaml.v3"
)

//Package app wires the recode table engine to its inputs: the recode table
//file, an optional yaml pattern bundle override, and diagnosis data files to
//recode in bulk.

// LoadRecoder reads a recode table from a text file and builds a Recoder from
// its lines. The first line of the file is a header and is skipped.
func LoadRecoder[C recoder.Code[C]](file string, patterns *recoder.Patterns[C]) (*recoder.Recoder[C], error) {
	fmt.Println("Parsing recode table from file: ", file)
	tableFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer tableFile.Close()
	return recoder.NewRecoder(tableFile, patterns)
}

// patternsConfig mirrors the yaml layout of a pattern bundle override file.
// Omitted entries keep their built-in defaults.
type patternsConfig struct {
	Family string `yaml:"family"` //coding system family; only "icd10" is supported
	Line   string `yaml:"line"`   //pattern for a full data line
	Group  string `yaml:"group"`  //pattern for a whole group of ranges
	Range  string `yaml:"range"`  //pattern for a single range
	Span   struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"span"` //the full code space, for the synthetic root
}

// LoadICD10Patterns reads a yaml file that overrides parts of the built-in
// ICD-10 pattern bundle. The ICD-10 endpoint conversion is kept: overriding
// the patterns adapts the table syntax, not the coding system.
func LoadICD10Patterns(file string) (*recoder.Patterns[recoder.ICD10], error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	cfg := patternsConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Family != "" && cfg.Family != "icd10" {
		return nil, fmt.Errorf("unsupported pattern family: %q", cfg.Family)
	}
	patterns := recoder.ICD10ToInteger()
	if cfg.Line != "" {
		if patterns.Line, err = regexp.Compile(cfg.Line); err != nil {
			return nil, err
		}
	}
	if cfg.Group != "" {
		if patterns.Group, err = regexp.Compile(`^(?:` + cfg.Group + `)$`); err != nil {
			return nil, err
		}
	}
	if cfg.Range != "" {
		if patterns.Range, err = regexp.Compile(cfg.Range); err != nil {
			return nil, err
		}
	}
	if cfg.Span.Start != "" && cfg.Span.End != "" {
		patterns.Span = recoder.NewCodeRange(recoder.ICD10(cfg.Span.Start), recoder.ICD10(cfg.Span.End))
	}
	return patterns, nil
}
