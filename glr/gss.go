// Package glr implements the GLR Extension (spec §4.5) and its runtime
// driver (spec §4.7, GLR half): a graph-structured stack (GSS) that forks a
// branch per candidate action on a Conflict cell and merges branches that
// reach the same state on the same input prefix (tracked here as a
// generation counter, incremented once per token consumed, since two
// branches landing on the same (state, parent) pair after different numbers
// of tokens are different derivations, not a legitimate merge).
//
// Grounded on the teacher's internal/ictiobus/parse package's stack-based
// drivers (lalr.go's push/pop-pair loop) for the overall shift/reduce
// shape, reworked into a graph rather than a linear stack per spec §9's
// "cyclic references in the GSS" design note, which calls for an arena of
// nodes keyed by id rather than tree ownership — grounded on the teacher's
// use of github.com/google/uuid for row/entity identity in server/dao.
package glr

import "github.com/google/uuid"

// NodeID identifies one node in a GSS arena.
type NodeID = uuid.UUID

// node is one frame of the graph-structured stack: a parser state, the
// semantic value produced when this node was pushed, and the predecessor
// nodes directly below it. push only merges into a node with the same single
// parent, so every non-root node has exactly one parent; each branch that
// merges into a node appends its semantic value to values, equal or not.
type node struct {
	id         NodeID
	state      int
	parents    []NodeID
	values     []interface{}
	generation int
}

// gss is the arena: all live nodes for one parse, indexed by id.
type gss struct {
	nodes map[NodeID]*node
}

func newGSS() *gss {
	return &gss{nodes: map[NodeID]*node{}}
}

// root creates the GSS's unique bottom node, at the parser's start state,
// with no parents, before any input has been consumed.
func (g *gss) root(startState int) NodeID {
	id := uuid.New()
	g.nodes[id] = &node{id: id, state: startState, generation: 0}
	return id
}

// push creates a new node above parent in state s carrying value, and
// returns its id. If an existing node directly above parent is already in
// state s AND was created while processing the same input token (i.e. the
// same shift or reduce was already performed from this exact predecessor, on
// this exact input prefix, by another branch), that node is reused and value
// is appended to it instead of creating a duplicate, implementing the
// branch-merge rule (spec §4.7: "branches that subsequently reach the same
// state on the same input prefix are merged, unifying their semantic values
// into a list"). generation scopes the match to the current input prefix so
// that two nodes which merely share (state, parent) after a different number
// of consumed tokens are never confused for one another.
func (g *gss) push(parent NodeID, s int, value interface{}, generation int) NodeID {
	for _, n := range g.nodes {
		if n.state != s || n.generation != generation || len(n.parents) != 1 || n.parents[0] != parent {
			continue
		}
		n.values = append(n.values, value)
		return n.id
	}
	id := uuid.New()
	g.nodes[id] = &node{id: id, state: s, parents: []NodeID{parent}, values: []interface{}{value}, generation: generation}
	return id
}

// paths enumerates every path of length steps starting at top and walking
// through parent edges. Each path holds steps+1 ids: top first, then each
// parent nearest-first, ending with the node that terminates it. A node
// with multiple parents forks the enumeration; multiple values on a node do
// not (childCombinations expands those).
func (g *gss) paths(top NodeID, steps int) [][]NodeID {
	if steps == 0 {
		return [][]NodeID{{top}}
	}
	n := g.nodes[top]
	var out [][]NodeID
	for _, parent := range n.parents {
		for _, rest := range g.paths(parent, steps-1) {
			path := append([]NodeID{top}, rest...)
			out = append(out, path)
		}
	}
	return out
}
