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
	"errors"
	"strings"
	"testing"
)

const testTable = `Recode table (test)
1 = Certain infectious and parasitic diseases (A00-B99)
2 = Intestinal infectious diseases (A00-A09)
3 = Malignant neoplasms (C00-C97)
4 = Of pharynx (C10-C13, C14.0)
`

func testRecoder(t *testing.T, table string) *Recoder[ICD10] {
	t.Helper()
	rec, err := NewRecoder(strings.NewReader(table), ICD10ToInteger())
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func codesEqual(got, expected []string) bool {
	if len(got) != len(expected) {
		return false
	}
	for i, g := range got {
		if g != expected[i] {
			return false
		}
	}
	return true
}

func getCodes(t *testing.T, rec *Recoder[ICD10], group string) []string {
	t.Helper()
	codes, err := rec.GetCodes(group)
	if err != nil {
		t.Fatal(err)
	}
	return codes
}

func TestGetCodes(t *testing.T) {
	rec := testRecoder(t, testTable)
	cases := []struct {
		group    string
		expected []string
	}{
		{"A03", []string{"1", "2"}},
		{"A01-A05", []string{"1", "2"}},
		{"B50", []string{"1"}}, //inside 1 but outside 2
		{"C11.1", []string{"3", "4"}},
		{"C14.0", []string{"3", "4"}},
		{"C14.1", []string{"3"}}, //only C14.0 belongs to recode 4
		{"C10-C13, C14.0", []string{"3", "4"}},
		{"A03, C11", []string{}}, //straddles two root children
		{"Z99", []string{}},      //valid group no recode contains
	}
	for _, c := range cases {
		if got := getCodes(t, rec, c.group); !codesEqual(got, c.expected) {
			t.Errorf("GetCodes(%q) = %v, expected %v", c.group, got, c.expected)
		}
	}
}

func TestTableOrderDeterminesTreeShape(t *testing.T) {
	// the child line precedes its would-be parent, so both end up under the root
	swapped := `Recode table (test)
2 = Intestinal infectious diseases (A00-A09)
1 = Certain infectious and parasitic diseases (A00-B99)
`
	rec := testRecoder(t, swapped)
	if got := getCodes(t, rec, "A03"); !codesEqual(got, []string{"2"}) {
		t.Errorf("GetCodes(\"A03\") = %v, expected only the first flat sibling", got)
	}
	if got := getCodes(t, rec, "B50"); !codesEqual(got, []string{"1"}) {
		t.Errorf("GetCodes(\"B50\") = %v, expected only the second flat sibling", got)
	}
	rendering := rec.String()
	if !strings.Contains(rendering, "├── 2 = ") || !strings.Contains(rendering, "└── 1 = ") {
		t.Errorf("tree is not flat:\n%s", rendering)
	}
}

func TestInvalidLine(t *testing.T) {
	table := `Recode table (test)
1 = Certain infectious and parasitic diseases (A00-B99)
not a valid line
`
	rec, err := NewRecoder(strings.NewReader(table), ICD10ToInteger())
	if rec != nil || err == nil {
		t.Fatal("load succeeded on a malformed table line")
	}
	if !errors.Is(err, ErrInvalidLine) {
		t.Errorf("error is %v, expected ErrInvalidLine", err)
	}
	if !strings.Contains(err.Error(), "not a valid line") {
		t.Errorf("error %q does not carry the raw line", err)
	}
}

func TestHeaderIsSkipped(t *testing.T) {
	// the header would be rejected as a data line, so reaching a valid tree
	// proves it was skipped
	table := "this header is no valid data line\n1 = everything (A00-Z99)\n"
	rec := testRecoder(t, table)
	if got := getCodes(t, rec, "G20"); !codesEqual(got, []string{"1"}) {
		t.Errorf("GetCodes(\"G20\") = %v", got)
	}
}

func TestInvalidQuery(t *testing.T) {
	rec := testRecoder(t, testTable)
	for _, invalid := range []string{"not-a-code", "ZZ9"} {
		_, err := rec.GetCodes(invalid)
		if !errors.Is(err, ErrInvalidGroup) {
			t.Errorf("GetCodes(%q) error is %v, expected ErrInvalidGroup", invalid, err)
		}
		if err == nil || !strings.Contains(err.Error(), invalid) {
			t.Errorf("error %v does not carry the raw query", err)
		}
	}
	// the recoder stays usable after a failed query
	if got := getCodes(t, rec, "A03"); !codesEqual(got, []string{"1", "2"}) {
		t.Errorf("GetCodes(\"A03\") = %v after a failed query", got)
	}
}

func TestParseGroup(t *testing.T) {
	rec := testRecoder(t, testTable)
	group, err := rec.parseGroup("C10-C13, C14.0")
	if err != nil {
		t.Fatal(err)
	}
	if s := group.String(); s != "[C10.0-C13.9, C14.0]" {
		t.Errorf("parsed group is %s", s)
	}
}

func TestGetCodesAll(t *testing.T) {
	rec := testRecoder(t, testTable)
	groups := []string{"A03", "C11.1", "bogus", "Z99"}
	codes, errs := rec.GetCodesAll(groups)
	if !codesEqual(codes[0], []string{"1", "2"}) || !codesEqual(codes[1], []string{"3", "4"}) {
		t.Errorf("batch results %v, %v", codes[0], codes[1])
	}
	if !errors.Is(errs[2], ErrInvalidGroup) {
		t.Errorf("batch error for invalid query is %v", errs[2])
	}
	if errs[3] != nil || len(codes[3]) != 0 {
		t.Errorf("unmatched query returned %v, %v", codes[3], errs[3])
	}
}

func TestVerify(t *testing.T) {
	rec := testRecoder(t, testTable)
	if failures := rec.Verify(500); failures != 0 {
		t.Errorf("%d verification failures on a well-formed table", failures)
	}
	// overlapping siblings shadow the later recode, which Verify must report
	overlapping := `Recode table (test)
1 = lower half (A00-A50)
2 = overlapping upper half (A40-A99)
`
	rec = testRecoder(t, overlapping)
	if failures := rec.Verify(500); failures == 0 {
		t.Error("no verification failures on a table with overlapping siblings")
	}
}

func TestRecoderString(t *testing.T) {
	rec := testRecoder(t, testTable)
	expected := "0 = [A00.0-Z99.9]\n" +
		"├── 1 = [A00.0-B99.9]\n" +
		"│   └── 2 = [A00.0-A09.9]\n" +
		"└── 3 = [C00.0-C97.9]\n" +
		"    └── 4 = [C10.0-C13.9, C14.0]\n"
	if s := rec.String(); s != expected {
		t.Errorf("tree renders as:\n%sexpected:\n%s", s, expected)
	}
}

func TestIntegerRecoder(t *testing.T) {
	table := `Recode table (integer test)
1 = all tumors (100-299)
2 = benign tumors (200-250)
`
	rec, err := NewRecoder(strings.NewReader(table), IntegerToInteger())
	if err != nil {
		t.Fatal(err)
	}
	codes, err := rec.GetCodes("210-220")
	if err != nil {
		t.Fatal(err)
	}
	if !codesEqual(codes, []string{"1", "2"}) {
		t.Errorf("GetCodes(\"210-220\") = %v", codes)
	}
	codes, err = rec.GetCodes("150")
	if err != nil {
		t.Fatal(err)
	}
	if !codesEqual(codes, []string{"1"}) {
		t.Errorf("GetCodes(\"150\") = %v", codes)
	}
}
