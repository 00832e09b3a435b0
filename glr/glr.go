package glr

import (
	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/errs"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/util"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/lalrgen/token"
)

// PrepareGrammar strips every production containing *error* from g (spec
// §4.5: "Error productions are stripped from the grammar before
// construction" in GLR mode, since the GLR reducer protocol has no notion
// of error recovery).
func PrepareGrammar(g *grammar.Grammar) *grammar.Grammar {
	errTerm := g.ErrorTerminal()
	return g.StripProductions(func(p grammar.Production) bool {
		for _, sym := range p.RHS {
			if sym == errTerm {
				return false
			}
		}
		return true
	})
}

// BuildTables strips error productions from g and assembles the GLR action
// table (conflicts retained rather than resolved, per spec §4.5).
func BuildTables(g *grammar.Grammar) *table.Tables {
	stripped := PrepareGrammar(g)
	a := automaton.Build(stripped)
	rel := lalr.Compute(a)
	// GLR mode never fails on unresolved conflicts: every candidate is kept.
	tbl, _ := table.Build(rel, table.Options{GLR: true})
	return tbl
}

// Result is the outcome of a GLR parse: every value the accept action
// produced across all surviving branches (spec §4.7), one per parse, equal
// values included.
type Result struct {
	Values []interface{}
}

// pendingShift records a shift action still to be applied once the reduce
// phase for the current token has settled.
type pendingShift struct {
	parent NodeID
	state  int
}

// Run drives tbl over the tokens lexer produces (spec §4.7, GLR half): it
// repeatedly reduces every viable branch to a fixpoint before shifting the
// current lookahead, forking a new GSS branch per candidate action on a
// Conflict cell and sharing nodes when branches land on the same state from
// the same predecessor. onError is invoked once per token for which every
// branch died without reaching accept.
func Run(tbl *table.Tables, lexer token.Lexer, onError token.OnError) (*Result, error) {
	g := tbl.Grammar
	stack := newGSS()
	frontier := []NodeID{stack.root(0)}

	var result Result
	gen := 0 // number of tokens shifted so far; scopes GSS node merging to a single input prefix

	for {
		tok := lexer()
		var term int
		if tok.Category == token.EOI {
			term = g.EOI()
		} else {
			id, ok := g.TerminalID(tok.Category)
			if !ok {
				onError("unrecognized token category \""+tok.Category+"\"", &tok)
				return &result, errs.Syntax("unrecognized token category", tok)
			}
			term = id
		}

		newFrontier, accepted, err := step(tbl, g, stack, frontier, term, tok.Value, gen)
		result.Values = append(result.Values, accepted...)

		if err != nil {
			onError(err.Error(), &tok)
			return &result, err
		}

		frontier = newFrontier
		if tok.Category == token.EOI {
			break
		}
		gen++
	}

	return &result, nil
}

// step processes one input terminal against every branch in frontier:
// reduces are applied to a fixpoint, shifts are collected and applied once
// reduction settles, and accept actions are collected into accepted. gen is
// the number of tokens already shifted prior to this call: reduce-phase
// pushes (which consume no input) are scoped to gen, while shift-phase
// pushes land one generation ahead, at gen+1.
func step(tbl *table.Tables, g *grammar.Grammar, stack *gss, frontier []NodeID, term int, value interface{}, gen int) (newFrontier []NodeID, accepted []interface{}, err error) {
	type reduceKey struct {
		node NodeID
		prod int
	}
	done := util.NewKeySet[reduceKey]()
	shifted := util.NewKeySet[NodeID]()
	acceptedFrom := util.NewKeySet[NodeID]()

	var shifts []pendingShift
	worklist := append([]NodeID{}, frontier...)

	for len(worklist) > 0 {
		n := worklist[0]
		worklist = worklist[1:]

		state := stack.nodes[n].state
		cell := tbl.Action[state][term]
		if len(cell.Actions) == 0 {
			continue
		}

		for _, act := range cell.Actions {
			switch act.Kind {
			case table.ActionAccept:
				if !acceptedFrom.Has(n) {
					acceptedFrom.Add(n)
					accepted = append(accepted, stack.nodes[n].values...)
				}

			case table.ActionShift:
				if !shifted.Has(n) {
					shifted.Add(n)
					shifts = append(shifts, pendingShift{parent: n, state: act.State})
				}

			case table.ActionReduce:
				key := reduceKey{node: n, prod: act.Production}
				if done.Has(key) {
					continue
				}
				done.Add(key)

				rhsLen := len(g.Production(act.Production).RHS)
				lhs := g.Production(act.Production).LHS
				for _, path := range stack.paths(n, rhsLen) {
					base := path[rhsLen]
					for _, children := range childCombinations(stack, path[:rhsLen]) {
						reduced := children
						action := g.Production(act.Production).Action
						var childValue interface{}
						if action != nil {
							childValue, _ = action(reduced)
						}
						gotoState := tbl.Goto[stack.nodes[base].state][lhs-g.NumTerminals()]
						if gotoState < 0 {
							continue
						}
						pushed := stack.push(base, gotoState, childValue, gen)
						worklist = append(worklist, pushed)
					}
				}
			}
		}
	}

	if len(shifts) == 0 && len(accepted) == 0 {
		return nil, accepted, errs.Syntax("no viable branch could shift or accept on this token", nil)
	}

	seen := util.NewKeySet[NodeID]()
	for _, sh := range shifts {
		pushed := stack.push(sh.parent, sh.state, value, gen+1)
		if !seen.Has(pushed) {
			seen.Add(pushed)
			newFrontier = append(newFrontier, pushed)
		}
	}

	return newFrontier, accepted, nil
}

// childCombinations returns the cross product of values across the popped
// frames in path, in left-to-right (rhs) order. path is ordered
// nearest-parent-first (last rhs symbol first); the raw combinations are
// built in that order and then reversed once.
func childCombinations(stack *gss, path []NodeID) [][]interface{} {
	return reverseEach(childCombinationsRaw(stack, path))
}

func childCombinationsRaw(stack *gss, path []NodeID) [][]interface{} {
	if len(path) == 0 {
		return [][]interface{}{{}}
	}
	rest := childCombinationsRaw(stack, path[1:])
	values := stack.nodes[path[0]].values
	if len(values) == 0 {
		values = []interface{}{nil}
	}

	var out [][]interface{}
	for _, v := range values {
		for _, r := range rest {
			combo := append([]interface{}{v}, r...)
			out = append(out, combo)
		}
	}
	return out
}

// reverseEach reverses the order of each inner slice, converting
// nearest-parent-first combinations into left-to-right rhs order.
func reverseEach(combos [][]interface{}) [][]interface{} {
	for _, c := range combos {
		for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	}
	return combos
}
