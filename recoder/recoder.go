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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/exascience/pargo/parallel"
	"github.com/valyala/fastrand"
)

//Package recoder implements the recode table engine. A recode table maps
//ranges of diagnosis codes (ICD-10 by default) onto aggregated cause-of-death
//codes, as used in public-health statistics. The table is parsed into a tree
//that mirrors the nesting of the code ranges, so a query resolves to the chain
//of recodes that contain it, from the most general recode to the most specific
//one.

var (
	// ErrInvalidLine is returned during construction when a non-header table
	// line does not match the line pattern. The error text carries the raw line.
	ErrInvalidLine = errors.New("invalid recode table line")
	// ErrInvalidGroup is returned by GetCodes when the query string does not
	// fully match the group pattern. The error text carries the raw query.
	ErrInvalidGroup = errors.New("invalid code group")
)

// Recoder converts codes of one coding system into the codes of a recode
// table. The tree it builds during construction is read-only afterwards, so
// concurrent queries on one Recoder are safe without locking.
type Recoder[C Code[C]] struct {
	patterns *Patterns[C]
	tree     *recodeTree[C]
}

// NewRecoder builds a Recoder from the lines of a recode table. The first line
// is a header and is skipped. Every other line must match the line pattern of
// the bundle; the first line that does not aborts the whole load. Each parsed
// recode is attached under the deepest existing node whose group contains its
// group, so a recode's line must appear after the lines of all recodes that
// should be its ancestors: table line order determines tree shape.
func NewRecoder[C Code[C]](table io.Reader, patterns *Patterns[C]) (*Recoder[C], error) {
	r := &Recoder[C]{patterns: patterns, tree: newRecodeTree[C](patterns.Span)}
	scanner := bufio.NewScanner(table)
	header := true
	for scanner.Scan() {
		line := scanner.Text()
		if header {
			header = false
			continue
		}
		m := patterns.Line.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLine, strings.TrimSpace(line))
		}
		group, err := r.parseGroup(m[2])
		if err != nil {
			return nil, err
		}
		r.tree.insert(r.tree.deepest(group), m[1], group)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseGroup builds a group from raw group text by scanning it for every
// non-overlapping range match, in match order. A range without an explicit end
// is singular: its end defaults to its start.
func (r *Recoder[C]) parseGroup(text string) (Group[C], error) {
	group := Group[C]{}
	for _, m := range r.patterns.Range.FindAllStringSubmatch(text, -1) {
		start, err := r.patterns.Convert(m[1], false)
		if err != nil {
			return nil, err
		}
		if m[2] == "" {
			group = append(group, SingularRange(start))
			continue
		}
		end, err := r.patterns.Convert(m[2], true)
		if err != nil {
			return nil, err
		}
		group = append(group, NewCodeRange(start, end))
	}
	return group, nil
}

// GetCodes returns all recode codes whose groups contain the queried group of
// codes, ordered from the most general recode to the most specific one. The
// query is a group in table syntax, e.g. "A01-A10, C90-C99". The result is
// empty when no recode at any depth contains the group. An invalid query
// returns ErrInvalidGroup and leaves the Recoder usable.
func (r *Recoder[C]) GetCodes(group string) ([]string, error) {
	if !r.patterns.Group.MatchString(group) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	g, err := r.parseGroup(group)
	if err != nil {
		return nil, err
	}
	codes := []string{}
	for _, n := range r.tree.path(0, g) {
		codes = append(codes, r.tree.nodes[n].code)
	}
	return codes, nil
}

// GetCodesAll recodes many query groups at once, in parallel. The tree is
// read-only after construction, so the queries need no coordination. Results
// and errors are returned per query, in query order.
func (r *Recoder[C]) GetCodesAll(groups []string) ([][]string, []error) {
	codes := make([][]string, len(groups))
	errs := make([]error, len(groups))
	parallel.Range(0, len(groups), 0, func(low, high int) {
		for i := low; i < high; i++ {
			codes[i], errs[i] = r.GetCodes(groups[i])
		}
	})
	return codes, errs
}

// Verify runs n random spot checks against the tree and returns the number of
// failures. Each check samples a recode and one of its ranges, then resolves
// the range's first code through the tree; the sampled recode must occur on
// the resulting path. Failures indicate overlapping sibling groups in the
// table, where first-match order shadows a recode.
func (r *Recoder[C]) Verify(n int) int {
	if len(r.tree.nodes) <= 1 {
		return 0
	}
	result := parallel.RangeReduce(0, n, 0, func(low, high int) interface{} {
		failures := 0
		for i := low; i < high; i++ {
			node := 1 + int(fastrand.Uint32n(uint32(len(r.tree.nodes)-1)))
			group := r.tree.nodes[node].group
			sampled := group[fastrand.Uint32n(uint32(len(group)))]
			onPath := false
			for _, m := range r.tree.path(0, Group[C]{SingularRange(sampled.Start)}) {
				if m == node {
					onPath = true
					break
				}
			}
			if !onPath {
				failures++
			}
		}
		return failures
	}, func(x, y interface{}) interface{} {
		return x.(int) + y.(int)
	})
	return result.(int)
}

// String returns a tree representation of all the codes, indented, depth
// first, in insertion order. For diagnostics only.
func (r *Recoder[C]) String() string {
	return r.tree.String()
}
