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

// The recode hierarchy is stored as a flat arena of nodes that refer to each
// other by index. The synthetic root always sits at index 0. Nodes are created
// once during table parsing, in table line order, and never mutated or removed
// afterwards.

// recodeNode represents one recode and its place in the hierarchy.
type recodeNode[C Code[C]] struct {
	code     string   //the recode identifier from the table, e.g. "07400"
	group    Group[C] //the ranges of source codes this recode subsumes
	parent   int      //index of the parent node, -1 for the root
	children []int    //indices of the child nodes, in insertion order
}

// recodeTree holds the arena of recode nodes.
type recodeTree[C Code[C]] struct {
	nodes []recodeNode[C]
}

// newRecodeTree creates a tree containing only the synthetic root. The root
// carries the placeholder code "0" and a group that spans the entire code
// space of the coding system.
func newRecodeTree[C Code[C]](span CodeRange[C]) *recodeTree[C] {
	root := recodeNode[C]{code: "0", group: Group[C]{span}, parent: -1}
	return &recodeTree[C]{nodes: []recodeNode[C]{root}}
}

// insert adds a new node under the given parent and returns its index. The new
// node becomes the parent's newest child.
func (t *recodeTree[C]) insert(parent int, code string, group Group[C]) int {
	i := len(t.nodes)
	t.nodes = append(t.nodes, recodeNode[C]{code: code, group: group, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, i)
	return i
}

// path returns the indices of the chain of nodes below node n that contain
// group, from the first matching child of n down to the deepest matching
// descendant. Children are tried in insertion order and the first child whose
// group contains the query wins; its siblings are not explored further. Well
// formed tables have disjoint sibling groups, so this is unambiguous for them;
// for overlapping siblings the outcome is determined by table line order.
func (t *recodeTree[C]) path(n int, group Group[C]) []int {
	for _, c := range t.nodes[n].children {
		if t.nodes[c].group.ContainsGroup(group) {
			return append([]int{c}, t.path(c, group)...)
		}
	}
	return nil
}

// deepest returns the index of the deepest node whose group contains the given
// group, or the root index if no descendant of the root contains it.
func (t *recodeTree[C]) deepest(group Group[C]) int {
	p := t.path(0, group)
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

// render writes an indented depth-first rendering of the subtree rooted at
// node n, one "code = group" line per node, children in insertion order.
func (t *recodeTree[C]) render(sb *strings.Builder, n int, prefix string) {
	children := t.nodes[n].children
	for i, c := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintf(sb, "%s%s%s = %s\n", prefix, branch, t.nodes[c].code, t.nodes[c].group)
		t.render(sb, c, prefix+indent)
	}
}

// String renders the whole tree for diagnostics.
func (t *recodeTree[C]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = %s\n", t.nodes[0].code, t.nodes[0].group)
	t.render(&sb, 0, "")
	return sb.String()
}
