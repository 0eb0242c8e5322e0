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

// Code is the constraint for the source codes that appear in recode table
// ranges. A code type only has to provide a strict total order; the containment
// tests derive <= from Less.
type Code[C any] interface {
	Less(other C) bool
}

// ICD10 is an ICD-10 diagnosis code in normalized form, e.g. "C14.0". The
// normalized form is always a 3-character category followed by "." and a
// sub-code digit, so normalized codes order correctly as plain strings.
type ICD10 string

func (c ICD10) Less(other ICD10) bool {
	return c < other
}

// IntCode is a plain integer source code, for recode tables whose source coding
// system is integers rather than ICD-10.
type IntCode int

func (c IntCode) Less(other IntCode) bool {
	return c < other
}
