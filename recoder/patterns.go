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

package recoder

import (
	"math"
	"regexp"
	"strconv"
)

//A recode table is driven by three related text patterns: one that recognizes
//a full data line, one that recognizes a whole group of ranges, and one that
//recognizes a single range within a group. Bundling the three makes the table
//format pluggable: another coding system only needs another bundle, the tree
//and query logic stay untouched.

// Patterns bundles the patterns and conversions of one coding system. A bundle
// is passed explicitly to NewRecoder; there is no process-wide default state.
type Patterns[C Code[C]] struct {
	Line  *regexp.Regexp //matches a full data line; capture 1 is the new recode, capture 2 the raw group text
	Group *regexp.Regexp //anchored; a query string must fully match it to be valid
	Range *regexp.Regexp //matches one range; capture 1 is the start, capture 2 the optional end
	//Convert turns a captured code fragment into a code value. last is true for
	//a fragment that ends a range, which matters for families that extend
	//abbreviated fragments differently at either end.
	Convert func(raw string, last bool) (C, error)
	Span    CodeRange[C] //the full code space of the system, used for the synthetic root
}

// Recode table pattern texts (ICD-10 default family):
const (
	codeIntegerPattern = `\s*(\d+)`
	codeICD10Pattern   = `\s*(?:\*)?(\w\d\d\.?\d?)`
	rangeICD10Pattern  = codeICD10Pattern + `\s*(?:-` + codeICD10Pattern + `)?`
	groupICD10Pattern  = `(?:` + rangeICD10Pattern + `(?:,)?)+`
)

// ICD10ToInteger returns the pattern bundle for the default table family:
// ICD-10 source ranges recoded to integer identifiers, one line per recode,
// e.g. "07400 = Of pharynx (C10-C13, C14.0)". An optional leading "*" on a
// code is accepted and ignored.
func ICD10ToInteger() *Patterns[ICD10] {
	return &Patterns[ICD10]{
		Line:    regexp.MustCompile(codeIntegerPattern + `\s*=.+\((` + groupICD10Pattern + `)\)\s*$`),
		Group:   regexp.MustCompile(`^(?:` + groupICD10Pattern + `)$`),
		Range:   regexp.MustCompile(rangeICD10Pattern),
		Convert: convertICD10,
		Span:    NewCodeRange(ICD10("A00.0"), ICD10("Z99.9")),
	}
}

// convertICD10 normalizes a captured ICD-10 fragment. A 3-character category
// with no decimal sub-code is extended with its first sub-code ".0" when it
// starts a range and its last sub-code ".9" when it ends one. A longer
// fragment whose 4th character is not already the decimal separator gets one
// inserted after the category.
func convertICD10(raw string, last bool) (ICD10, error) {
	if len(raw) == 3 {
		if last {
			return ICD10(raw + ".9"), nil
		}
		return ICD10(raw + ".0"), nil
	}
	if len(raw) > 3 && raw[3] != '.' {
		return ICD10(raw[:3] + "." + raw[3:]), nil
	}
	return ICD10(raw), nil
}

// IntegerToInteger returns a pattern bundle for tables whose source coding
// system is plain integers, e.g. "3 = other tumors (100-199, 240)".
func IntegerToInteger() *Patterns[IntCode] {
	rangePattern := codeIntegerPattern + `\s*(?:-` + codeIntegerPattern + `)?`
	groupPattern := `(?:` + rangePattern + `(?:,)?)+`
	return &Patterns[IntCode]{
		Line:  regexp.MustCompile(codeIntegerPattern + `\s*=.+\((` + groupPattern + `)\)\s*$`),
		Group: regexp.MustCompile(`^(?:` + groupPattern + `)$`),
		Range: regexp.MustCompile(rangePattern),
		Convert: func(raw string, last bool) (IntCode, error) {
			n, err := strconv.Atoi(raw)
			return IntCode(n), err
		},
		Span: NewCodeRange(IntCode(0), IntCode(math.MaxInt)),
	}
}
