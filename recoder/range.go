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
	"fmt"
	"strings"
)

// CodeRange represents a closed range of codes. A singular code is a range
// whose Start and End are the same code. Ranges are values and are never
// mutated after construction.
type CodeRange[C Code[C]] struct {
	Start, End C
}

// NewCodeRange creates a code range from its first and last code.
func NewCodeRange[C Code[C]](start, end C) CodeRange[C] {
	return CodeRange[C]{Start: start, End: end}
}

// SingularRange creates a range that covers exactly one code, e.g. C14.0.
func SingularRange[C Code[C]](code C) CodeRange[C] {
	return CodeRange[C]{Start: code, End: code}
}

// Contains checks if this code range contains other, i.e. other is fully
// nested: Start <= other.Start <= other.End <= End. E.g. A01-B99 contains
// A01-A10 but not A01-C10.
func (r CodeRange[C]) Contains(other CodeRange[C]) bool {
	return !other.Start.Less(r.Start) && !other.End.Less(other.Start) && !r.End.Less(other.End)
}

// String renders the range as "start" for a singular range and "start-end"
// otherwise.
func (r CodeRange[C]) String() string {
	if !r.Start.Less(r.End) && !r.End.Less(r.Start) {
		return fmt.Sprint(r.Start)
	}
	return fmt.Sprintf("%v-%v", r.Start, r.End)
}

// Group is the ordered collection of code ranges that one recode subsumes. The
// order is the declaration order in the table; member ranges are not required
// to be sorted or disjoint. A group is treated as immutable once built.
type Group[C Code[C]] []CodeRange[C]

// Contains checks if this group contains a code range, i.e. at least one
// member range contains it. E.g. [A01-B99, C01-C99] contains A01-A10.
func (g Group[C]) Contains(r CodeRange[C]) bool {
	for _, member := range g {
		if member.Contains(r) {
			return true
		}
	}
	return false
}

// ContainsGroup checks if this group contains every range of other
// member-wise. The ranges of other are not merged before testing.
func (g Group[C]) ContainsGroup(other Group[C]) bool {
	for _, r := range other {
		if !g.Contains(r) {
			return false
		}
	}
	return true
}

// String renders the group as its ranges in declaration order, e.g.
// "[C10.0-C13.9, C14.0]".
func (g Group[C]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, r := range g {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
	}
	sb.WriteString("]")
	return sb.String()
}
