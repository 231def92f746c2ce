// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package trie implements hash-consing of trie-shaped subtrees: nodes with
// identical outgoing edge sets are collapsed to a single shared node.
//
// This is the structure that lets two byte-level transition chains which
// happen to traverse the same remaining bytes to the same target state
// share their tail states, instead of allocating one intermediate state
// per chain.
package trie

import (
	"sort"
	"strconv"
	"strings"
)

// Edge is one outgoing edge of a node being hash-consed: a transition key
// paired with the node ID it leads to.
type Edge struct {
	Key    int
	Target int
}

// Cache hash-conses nodes by the (sorted) set of edges leaving them.
//
// The zero value is empty and ready to use.
type Cache struct {
	index map[string]int
}

// Intern returns the canonical node ID for a node with the given outgoing
// edges. If no node with this exact edge set has been interned before,
// alloc is called to mint a fresh node ID, which becomes canonical for that
// edge set from then on.
//
// edges is sorted in place.
func (c *Cache) Intern(edges []Edge, alloc func() int) int {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Key != edges[j].Key {
			return edges[i].Key < edges[j].Key
		}
		return edges[i].Target < edges[j].Target
	})

	key := canonicalKey(edges)

	if c.index == nil {
		c.index = make(map[string]int)
	}
	if id, ok := c.index[key]; ok {
		return id
	}

	id := alloc()
	c.index[key] = id
	return id
}

// canonicalKey builds a string uniquely identifying a sorted edge set, used
// as the hash-cons map key. Edges must already be sorted by (Key, Target).
func canonicalKey(edges []Edge) string {
	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(e.Key))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Target))
	}
	return b.String()
}
