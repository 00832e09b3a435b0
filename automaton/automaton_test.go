package automaton

import (
	"testing"

	"github.com/dekarrin/lalrgen/grammar"
	"github.com/stretchr/testify/assert"
)

func buildExprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}, {Name: "+"}},
		nil,
		[]grammar.RuleDecl{
			{NonTerminal: "E", Productions: []grammar.ProductionDecl{
				{RHS: []string{"E", "+", "id"}},
				{RHS: []string{"id"}},
			}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func Test_Build_StartStateKernel(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	a := Build(g)

	start := a.States[0]
	assert.Len(start.Kernel, 1)

	prod, dot := a.Decode(start.Kernel[0])
	assert.Equal(g.AugmentedProduction(), prod)
	assert.Equal(0, dot)
}

func Test_Build_KernelCanonicalization(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	a := Build(g)

	// every state reachable by shifting "id" from a state whose closure
	// contains "E -> .id" should canonicalize to the same state.
	idItem := a.EncodeItem(2, 0) // E -> .id
	seenIDStates := map[int]bool{}
	for _, s := range a.States {
		hasIDItem := false
		for _, it := range s.Closure {
			if it == idItem {
				hasIDItem = true
			}
		}
		if !hasIDItem {
			continue
		}
		for sym, target := range s.Transitions {
			if g.Symbol(sym).Name == "id" {
				seenIDStates[target] = true
			}
		}
	}
	assert.Len(seenIDStates, 1, "all shifts on id should canonicalize to the same kernel-equal state")
}

func Test_Build_NTTransitionsRecorded(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	a := Build(g)

	assert.NotEmpty(a.NTTransitions)
	for _, nt := range a.NTTransitions {
		assert.True(g.IsNonTerminal(nt.NonTerminal))
		_, ok := a.NTTransIndex[[2]int{nt.State, nt.NonTerminal}]
		assert.True(ok)
	}
}

func Test_Closure_ExpandsNonTerminals(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	a := Build(g)

	start := a.States[0]
	closure := a.Closure(start.Kernel)

	// closure of {[S' -> .E $]} must include both E productions at dot 0
	found := map[int]bool{}
	for _, it := range closure {
		prod, dot := a.Decode(it)
		if dot == 0 {
			found[prod] = true
		}
	}
	assert.GreaterOrEqual(len(found), 3) // S', E->E+id, E->id
}
