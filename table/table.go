// Package table implements the Table Assembler (spec §4.4): it merges the
// tentative shift, reduce, and goto actions derived from the automaton and
// the relation engine's LA sets into the final action/goto tables, applying
// the precedence/associativity conflict-resolution policy and counting
// unresolved conflicts against the expect: budget.
//
// Grounded on the teacher's internal/ictiobus/parse/lalr.go (Action,
// Action.Type, the LRAction merge loop in CreateTable), reshaped around the
// dense int ids and bitset LA sets the spec's resource model requires
// instead of the teacher's string-keyed SVSet-based tables.
package table

import (
	"sort"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/errs"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
)

// ActionKind identifies what an Action does.
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is a single tentative or resolved table entry.
type Action struct {
	Kind       ActionKind
	State      int // shift target, when Kind == ActionShift
	Production int // production being reduced, when Kind == ActionReduce
}

// Cell is one action-table entry. Actions has length 1 in the deterministic
// LALR driver, except it is empty when no action is defined (a syntax
// error). In GLR mode (spec §4.5) a cell with more than one tentative action
// keeps all of them, in the order they were discovered.
type Cell struct {
	Actions []Action
}

// Conflict records one unresolved conflict for the §6.3 listing.
type Conflict struct {
	State      int
	Terminal   int
	Kind       string // "shift/reduce" or "reduce/reduce"
	Candidates []Action
}

// Options configures table assembly.
type Options struct {
	// Expect is the unresolved-conflict budget (spec §6.1 "expect: n").
	Expect int

	// GLR selects the GLR extension (spec §4.5): conflicting tentative
	// actions are retained instead of resolved.
	GLR bool
}

// Tables is the assembled action/goto table for a grammar, plus enough of
// the automaton and grammar to render the §6.3 dump and drive a parser.
type Tables struct {
	Grammar   *grammar.Grammar
	Automaton *automaton.Automaton
	GLR       bool

	// Action[state][terminal] is the Cell for that combination.
	Action [][]Cell

	// Goto[state][nt-index] is the target state, or -1 if undefined.
	// nt-index is the nonterminal id minus NumTerminals().
	Goto [][]int

	// Conflicts lists every reduce/reduce or shift/reduce ambiguity that the
	// precedence/associativity policy did not cleanly resolve (the ones
	// counted in Unresolved). GLR mode records none here; the competing
	// actions stay in their Cell.
	Conflicts []Conflict

	// Unresolved is the count of conflicts that were NOT cleanly resolved by
	// the precedence/associativity policy (always 0 in GLR mode).
	Unresolved int
}

// Build runs the Table Assembler (spec §4.4) over rel, producing the final
// action/goto tables. It returns a non-nil *Tables even on error, so callers
// that only care about the conflict listing can still inspect it.
func Build(rel *lalr.Relations, opts Options) (*Tables, error) {
	g := rel.Grammar
	a := rel.Automaton
	numStates := len(a.States)
	numTerms := g.NumTerminals()
	numNT := g.NumNonTerminals()

	t := &Tables{Grammar: g, Automaton: a, GLR: opts.GLR}
	t.Action = make([][]Cell, numStates)
	t.Goto = make([][]int, numStates)

	candidates := make([][][]Action, numStates)
	for s := 0; s < numStates; s++ {
		t.Action[s] = make([]Cell, numTerms)
		t.Goto[s] = make([]int, numNT)
		for i := range t.Goto[s] {
			t.Goto[s][i] = -1
		}
		candidates[s] = make([][]Action, numTerms)
	}

	for _, s := range a.States {
		for sym, target := range s.Transitions {
			if g.IsTerminal(sym) {
				candidates[s.ID][sym] = append(candidates[s.ID][sym], Action{Kind: ActionShift, State: target})
			} else {
				t.Goto[s.ID][sym-numTerms] = target
			}
		}
	}

	for _, s := range a.States {
		for _, item := range s.Closure {
			prod, dot := a.Decode(item)
			rhs := g.Production(prod).RHS
			if prod == g.AugmentedProduction() {
				// accept on *eoi* from S' -> S . *eoi*, while S's value is
				// still the top of the stack
				if dot == len(rhs)-1 {
					candidates[s.ID][g.EOI()] = append(candidates[s.ID][g.EOI()], Action{Kind: ActionAccept})
				}
				continue
			}
			if dot != len(rhs) {
				continue
			}
			la := rel.LA[lalr.ReduceKey{State: s.ID, Production: prod}]
			for _, term := range la.Elements() {
				candidates[s.ID][term] = append(candidates[s.ID][term], Action{Kind: ActionReduce, Production: prod})
			}
		}
	}

	for s := 0; s < numStates; s++ {
		for term := 0; term < numTerms; term++ {
			acts := candidates[s][term]
			if len(acts) == 0 {
				continue
			}
			if len(acts) == 1 {
				t.Action[s][term] = Cell{Actions: acts}
				continue
			}
			if opts.GLR {
				t.Action[s][term] = Cell{Actions: acts}
				continue
			}

			winner, clean, kind := resolve(g, term, acts)
			t.Action[s][term] = Cell{Actions: []Action{winner}}
			if !clean {
				t.Unresolved++
				t.Conflicts = append(t.Conflicts, Conflict{State: s, Terminal: term, Kind: kind, Candidates: acts})
			}
		}
	}

	if !opts.GLR && t.Unresolved > opts.Expect {
		return t, errs.Conflicts(t.Unresolved, opts.Expect, ConflictListing(t))
	}
	return t, nil
}

// resolve applies the spec §4.4 conflict-resolution policy to the tentative
// actions for one (state, terminal) cell and returns the winning action,
// whether resolution was "clean" (i.e. not reported as unresolved), and a
// label for the kind of conflict for the listing.
func resolve(g *grammar.Grammar, term int, acts []Action) (Action, bool, string) {
	var shifts, reduces []Action
	for _, act := range acts {
		switch act.Kind {
		case ActionShift:
			shifts = append(shifts, act)
		case ActionReduce:
			reduces = append(reduces, act)
		case ActionAccept:
			return act, true, ""
		}
	}

	if len(reduces) > 1 {
		sort.Slice(reduces, func(i, j int) bool { return reduces[i].Production < reduces[j].Production })
		winner := reduces[0]
		if len(shifts) == 0 {
			return winner, false, "reduce/reduce"
		}
		resolved, _, _ := resolveShiftReduce(g, term, shifts[0], winner)
		return resolved, false, "reduce/reduce"
	}

	if len(shifts) == 1 && len(reduces) == 1 {
		return resolveShiftReduce(g, term, shifts[0], reduces[0])
	}
	if len(shifts) >= 1 {
		return shifts[0], true, ""
	}
	return reduces[0], true, ""
}

// resolveShiftReduce applies the precedence/associativity table (spec
// §4.4) to a single shift-vs-reduce pair.
func resolveShiftReduce(g *grammar.Grammar, term int, shift, reduce Action) (Action, bool, string) {
	prod := g.Production(reduce.Production)
	termSym := g.Symbol(term)

	if prod.Precedence != nil && termSym.Precedence != nil {
		switch {
		case *prod.Precedence > *termSym.Precedence:
			return reduce, true, ""
		case *prod.Precedence < *termSym.Precedence:
			return shift, true, ""
		}
		switch termSym.Assoc {
		case grammar.AssocLeft:
			return reduce, true, ""
		case grammar.AssocRight:
			return shift, true, ""
		case grammar.AssocNonAssoc:
			return Action{Kind: ActionError}, true, ""
		}
	}

	return shift, false, "shift/reduce"
}
