package lalr

import (
	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/bitset"
)

// ReduceKey identifies one reduction: a state and the production that is
// reducible there.
type ReduceKey struct {
	State      int
	Production int
}

// Relations holds the per-NTTrans DR/Read/Follow sets and the resulting
// per-reduction lookahead sets, computed by Compute.
type Relations struct {
	Grammar   *grammar.Grammar
	Automaton *automaton.Automaton

	DR     []bitset.Set
	Read   []bitset.Set
	Follow []bitset.Set

	// LA is the lookahead set for each reduction, keyed by the state it
	// occurs in and the production being reduced.
	LA map[ReduceKey]bitset.Set
}

// Compute runs the full DeRemer-Pennello lookahead computation (spec §4.3)
// over a: it builds DR, solves Read via the reads relation, builds Includes,
// solves Follow, then derives LA(q) for every reduction via Lookback.
func Compute(a *automaton.Automaton) *Relations {
	g := a.Grammar
	numTerms := g.NumTerminals()
	numNT := len(a.NTTransitions)

	r := &Relations{
		Grammar:   g,
		Automaton: a,
		LA:        map[ReduceKey]bitset.Set{},
	}

	nullable := g.Nullable()
	predecessors := buildPredecessors(a)

	r.DR = computeDR(a, numTerms)
	readsEdges := computeReadsEdges(a, nullable)
	r.Read = Digraph(numNT, r.DR, readsEdges)

	includesEdges := computeIncludesEdges(a, nullable, predecessors)
	r.Follow = Digraph(numNT, r.Read, includesEdges)

	r.computeLA(predecessors)

	return r
}

// computeDR builds DR(p) for every NT-trans p=(s,A): the terminals
// immediately readable by shifting out of goto(s,A) (spec §4.3).
func computeDR(a *automaton.Automaton, numTerms int) []bitset.Set {
	dr := make([]bitset.Set, len(a.NTTransitions))
	for i, nt := range a.NTTransitions {
		set := bitset.New(numTerms)
		target := a.States[nt.State].Transitions[nt.NonTerminal]
		for sym := range a.States[target].Transitions {
			if a.Grammar.IsTerminal(sym) {
				set.Add(sym)
			}
		}
		dr[i] = set
	}
	return dr
}

// computeReadsEdges builds the "reads" edge function: p=(s,A) reads p'=(s',C)
// iff s--A-->s' and C is a nullable nonterminal with s'--C--> defined.
func computeReadsEdges(a *automaton.Automaton, nullable map[int]bool) EdgeFunc {
	adjacency := make([][]int, len(a.NTTransitions))
	for i, p := range a.NTTransitions {
		target := a.States[p.State].Transitions[p.NonTerminal]
		for sym, ok := range a.States[target].Transitions {
			_ = ok
			if !a.Grammar.IsNonTerminal(sym) || !nullable[sym] {
				continue
			}
			if j, ok := a.NTTransIndex[[2]int{target, sym}]; ok {
				adjacency[i] = append(adjacency[i], j)
			}
		}
	}
	return func(node int) []int { return adjacency[node] }
}

// computeIncludesEdges builds the adjacency for the includes relation, used
// as the edge function of the second digraph call (base Read, producing
// Follow). includes(p', p) holds when p'=(s2,B), there is a production
// B -> beta A gamma with gamma nullable, the path spelling beta from s2 ends
// at s1, and p=(s1,A). The digraph walks from p to p' (Follow(p) depends on
// Follow(p')), so edges(p) collects every such p'.
func computeIncludesEdges(a *automaton.Automaton, nullable map[int]bool, predecessors predMap) EdgeFunc {
	adjacency := make([][]int, len(a.NTTransitions))

	for pPrimeIdx, pPrime := range a.NTTransitions {
		s2 := pPrime.State
		B := pPrime.NonTerminal

		for _, prodID := range a.Grammar.ProductionsOf(B) {
			rhs := a.Grammar.Production(prodID).RHS
			for j, sym := range rhs {
				if !a.Grammar.IsNonTerminal(sym) {
					continue
				}
				if !sliceNullable(rhs[j+1:], nullable) {
					continue
				}
				// beta = rhs[:j]; walk forward from s2 spelling beta.
				s1, ok := walkForward(a, s2, rhs[:j])
				if !ok {
					continue
				}
				pIdx, ok := a.NTTransIndex[[2]int{s1, sym}]
				if !ok {
					continue
				}
				adjacency[pIdx] = append(adjacency[pIdx], pPrimeIdx)
			}
		}
	}

	return func(node int) []int { return adjacency[node] }
}

func sliceNullable(syms []int, nullable map[int]bool) bool {
	for _, s := range syms {
		if !nullable[s] {
			return false
		}
	}
	return true
}

// walkForward follows transitions from state s through every symbol in syms
// in order, returning the final state and whether every step existed.
func walkForward(a *automaton.Automaton, s int, syms []int) (int, bool) {
	cur := s
	for _, sym := range syms {
		next, ok := a.States[cur].Transitions[sym]
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// predMap is a reverse-transition index: predecessors[state][symbol] is
// every state with a transition to state on symbol.
type predMap map[int]map[int][]int

func buildPredecessors(a *automaton.Automaton) predMap {
	preds := predMap{}
	for _, s := range a.States {
		for sym, target := range s.Transitions {
			if preds[target] == nil {
				preds[target] = map[int][]int{}
			}
			preds[target][sym] = append(preds[target][sym], s.ID)
		}
	}
	return preds
}

// computeLA derives the per-reduction lookahead set via the Lookback
// relation (spec §4.3): for every completed item (other than the augmented
// start's, whose Accept the Table Assembler places itself), walk the
// automaton backward through the production's rhs to find every originating
// NT-trans, and union their Follow sets.
func (r *Relations) computeLA(predecessors predMap) {
	a := r.Automaton
	g := r.Grammar
	numTerms := g.NumTerminals()

	for _, s := range a.States {
		for _, item := range s.Closure {
			prod, dot := a.Decode(item)
			rhs := g.Production(prod).RHS
			if dot != len(rhs) {
				continue // not a completed item
			}
			if prod == g.AugmentedProduction() {
				continue // Accept is handled directly by the Table Assembler
			}

			origins := walkBackward(predecessors, s.ID, rhs)
			key := ReduceKey{State: s.ID, Production: prod}
			set, ok := r.LA[key]
			if !ok {
				set = bitset.New(numTerms)
				r.LA[key] = set
			}

			lhs := g.Production(prod).LHS
			for origin := range origins {
				if pIdx, ok := a.NTTransIndex[[2]int{origin, lhs}]; ok {
					set.Or(r.Follow[pIdx])
				}
			}
		}
	}
}

// walkBackward returns the set of states reachable by reversing the
// transitions spelling rhs, starting from s0 (i.e. every state s such that
// goto-chasing rhs from s lands on s0).
func walkBackward(predecessors predMap, s0 int, rhs []int) map[int]bool {
	frontier := map[int]bool{s0: true}
	for i := len(rhs) - 1; i >= 0; i-- {
		sym := rhs[i]
		next := map[int]bool{}
		for s := range frontier {
			for _, p := range predecessors[s][sym] {
				next[p] = true
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return frontier
}
