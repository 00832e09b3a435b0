// Package automaton implements the LR(0) Builder (spec §4.2): it builds the
// canonical collection of LR(0) item sets for a grammar, canonicalizing
// states by kernel equality, and collects the dense set of
// nonterminal-transitions the relation engine in package lalr operates over.
//
// Items are represented as a single dense integer, per spec §3
// ("production-id × max-rhs-length + dot"), grounded on the teacher's
// internal/ictiobus/grammar.LR0Item but reshaped from a string-keyed struct
// to the integer encoding the resource model (§5) calls for.
package automaton

import (
	"sort"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/util"
)

// Item is a dense-encoded LR(0)/LR(1)-kernel item: production id and dot
// position packed into one integer so item sets can be represented, sorted,
// and compared as plain integer slices.
type Item int

// State is one node of the canonical LR(0) collection.
type State struct {
	ID          int
	Kernel      []Item // sorted
	Closure     []Item // sorted, superset of Kernel
	Transitions map[int]int // symbol id -> state id
}

// NTTrans is a nonterminal-transition: a (state, nonterminal) pair for which
// a goto is defined. These are the dense domain the relation engine (§4.3)
// operates over.
type NTTrans struct {
	State       int
	NonTerminal int
}

// Automaton is the canonical LR(0) collection plus the indexing structures
// needed to build LALR(1)/CLR(1) tables on top of it.
type Automaton struct {
	Grammar *grammar.Grammar
	MaxRHS  int
	States  []State

	// NTTransitions is dense and ordered; NTTransIndex maps a (state,
	// nonterminal) pair back to its position in NTTransitions.
	NTTransitions []NTTrans
	NTTransIndex  map[[2]int]int

	kernelIndex map[string]int
}

// EncodeItem packs a (production, dot) pair into a single Item using the
// automaton's fixed stride (spec §3).
func (a *Automaton) EncodeItem(prod, dot int) Item {
	return Item(prod*(a.MaxRHS+1) + dot)
}

// Decode unpacks an Item back into its production id and dot position.
func (a *Automaton) Decode(it Item) (prod, dot int) {
	stride := a.MaxRHS + 1
	return int(it) / stride, int(it) % stride
}

// symbolAfterDot returns the rhs symbol immediately after the dot in it, and
// whether one exists (false at the end of the production).
func (a *Automaton) symbolAfterDot(it Item) (sym int, ok bool) {
	prod, dot := a.Decode(it)
	rhs := a.Grammar.Production(prod).RHS
	if dot >= len(rhs) {
		return 0, false
	}
	return rhs[dot], true
}

// IsKernelItem reports whether it is a kernel item per spec §3's invariant:
// dot>0, or it is the unique augmented-start item.
func (a *Automaton) IsKernelItem(it Item) bool {
	prod, dot := a.Decode(it)
	if dot > 0 {
		return true
	}
	return prod == a.Grammar.AugmentedProduction()
}

// Closure computes the least superset of items containing kernel such that
// whenever the symbol after the dot is a nonterminal N, every production of
// N with dot 0 is included. Implemented with a work list; nonterminals
// already expanded are remembered to avoid rework, per spec §4.2.
func (a *Automaton) Closure(kernel []Item) []Item {
	seen := util.NewKeySet[Item]()
	expandedNT := util.NewKeySet[int]()
	var result []Item
	work := append([]Item{}, kernel...)

	for len(work) > 0 {
		it := work[0]
		work = work[1:]
		if seen.Has(it) {
			continue
		}
		seen.Add(it)
		result = append(result, it)

		sym, ok := a.symbolAfterDot(it)
		if !ok || a.Grammar.IsTerminal(sym) {
			continue
		}
		if expandedNT.Has(sym) {
			continue
		}
		expandedNT.Add(sym)
		for _, prodID := range a.Grammar.ProductionsOf(sym) {
			newItem := a.EncodeItem(prodID, 0)
			if !seen.Has(newItem) {
				work = append(work, newItem)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Goto computes the kernel of GOTO(I, X): every item in closure(I) with X
// immediately after the dot, with the dot advanced one position.
func (a *Automaton) Goto(closureItems []Item, sym int) []Item {
	var kernel []Item
	for _, it := range closureItems {
		s, ok := a.symbolAfterDot(it)
		if !ok || s != sym {
			continue
		}
		prod, dot := a.Decode(it)
		kernel = append(kernel, a.EncodeItem(prod, dot+1))
	}
	sort.Slice(kernel, func(i, j int) bool { return kernel[i] < kernel[j] })
	return kernel
}

func kernelKey(kernel []Item) string {
	b := make([]byte, 0, len(kernel)*5)
	for i, it := range kernel {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendInt(b, int(it))
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	end := len(b) - 1
	for start < end {
		b[start], b[end] = b[end], b[start]
		start++
		end--
	}
	return b
}

// Build runs the LR(0) Builder (spec §4.2) over g: starting from the kernel
// {(augmented-start-production, 0)}, it computes gotos for every symbol
// appearing after a dot, enqueueing any newly-discovered kernel, until no
// new states are found. Termination is guaranteed by the finiteness of item
// sets over a finite grammar.
func Build(g *grammar.Grammar) *Automaton {
	maxRHS := 0
	for _, p := range g.Productions() {
		if len(p.RHS) > maxRHS {
			maxRHS = len(p.RHS)
		}
	}

	a := &Automaton{
		Grammar:      g,
		MaxRHS:       maxRHS,
		kernelIndex:  map[string]int{},
		NTTransIndex: map[[2]int]int{},
	}

	startKernel := []Item{a.EncodeItem(g.AugmentedProduction(), 0)}
	a.addState(startKernel)

	// states are appended to the slice as they're discovered and processed
	// in order, so ranging over a.States while appending to it acts as the
	// work list (spec §3 Lifecycle: "States are appended to a work list
	// during LR(0) construction and frozen thereafter").
	for i := 0; i < len(a.States); i++ {
		s := a.States[i]
		closure := a.Closure(s.Kernel)
		a.States[i].Closure = closure

		symbols := symbolsAfterDot(a, closure)
		for _, sym := range symbols {
			kernel := a.Goto(closure, sym)
			if len(kernel) == 0 {
				continue
			}
			targetID := a.addState(kernel)
			a.States[i].Transitions[sym] = targetID

			if g.IsNonTerminal(sym) {
				a.recordNTTrans(i, sym)
			}
		}
	}

	return a
}

// recordNTTrans appends a new NT-trans if (state, nt) hasn't been seen.
func (a *Automaton) recordNTTrans(state, nt int) {
	key := [2]int{state, nt}
	if _, ok := a.NTTransIndex[key]; ok {
		return
	}
	a.NTTransIndex[key] = len(a.NTTransitions)
	a.NTTransitions = append(a.NTTransitions, NTTrans{State: state, NonTerminal: nt})
}

// addState canonicalizes kernel against existing states (spec §3 Invariant
// 3: "two states with identical kernel sets are the same state") and
// returns its id, creating a new State if none exists yet.
func (a *Automaton) addState(kernel []Item) int {
	key := kernelKey(kernel)
	if id, ok := a.kernelIndex[key]; ok {
		return id
	}
	id := len(a.States)
	a.kernelIndex[key] = id
	a.States = append(a.States, State{
		ID:          id,
		Kernel:      kernel,
		Transitions: map[int]int{},
	})
	return id
}

func symbolsAfterDot(a *Automaton, closure []Item) []int {
	seen := util.NewKeySet[int]()
	var syms []int
	for _, it := range closure {
		sym, ok := a.symbolAfterDot(it)
		if !ok || seen.Has(sym) {
			continue
		}
		seen.Add(sym)
		syms = append(syms, sym)
	}
	sort.Ints(syms)
	return syms
}
