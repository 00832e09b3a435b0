// Package lalr implements the Relation Engine (spec §4.3), the intellectual
// center of the generator: the DeRemer-Pennello DR/Reads/Includes/Lookback
// relations and the two digraph fixpoints built on top of them.
package lalr

import "github.com/dekarrin/lalrgen/internal/bitset"

// EdgeFunc returns the out-edges of a node in a relation graph.
type EdgeFunc func(node int) []int

// Digraph solves the DeRemer-Pennello digraph fixpoint (spec §9, "Digraph
// fixpoint"): a single Tarjan-style SCC traversal that simultaneously
// computes a set value per node, where each SCC's value is the union of the
// base sets of its members and each node additionally receives the union of
// every SCC reachable from it via edges. base[i] must be sized for the same
// bit width for every i; the returned slice is a new set of values, one per
// node, and does not alias base.
//
// This is written once, generically, and invoked twice by the relation
// computations below: once for (DR, reads) to get Read, and once for (Read,
// includes) to get Follow.
func Digraph(numNodes int, base []bitset.Set, edges EdgeFunc) []bitset.Set {
	const unvisited = 0

	index := make([]int, numNodes)
	result := make([]bitset.Set, numNodes)
	for i := range result {
		result[i] = base[i].Clone()
	}

	var stack []int
	depth := 0

	var traverse func(x int)
	traverse = func(x int) {
		depth++
		stack = append(stack, x)
		d := depth
		index[x] = d

		for _, y := range edges(x) {
			if index[y] == unvisited {
				traverse(y)
			}
			if index[y] < index[x] {
				index[x] = index[y]
			}
			result[x].Or(result[y])
		}

		if index[x] == d {
			// x roots a strongly-connected component: pop it and every node
			// above it on the stack, freezing their index to infinity and
			// sharing the component's final value.
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				index[top] = len(index) + 1 // infinity sentinel
				result[top] = result[x]
				if top == x {
					break
				}
			}
		}
	}

	for i := 0; i < numNodes; i++ {
		if index[i] == unvisited {
			traverse(i)
		}
	}

	return result
}
