package table

import (
	"testing"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/stretchr/testify/assert"
)

func buildTables(t *testing.T, g *grammar.Grammar, opts Options) *Tables {
	t.Helper()
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := Build(rel, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tbl
}

func exprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}, {Name: "+"}, {Name: "*"}, {Name: "("}, {Name: ")"}},
		[]grammar.PrecGroup{
			{Assoc: grammar.AssocLeft, Terminals: []string{"+"}},
			{Assoc: grammar.AssocLeft, Terminals: []string{"*"}},
		},
		[]grammar.RuleDecl{
			{NonTerminal: "E", Productions: []grammar.ProductionDecl{
				{RHS: []string{"E", "+", "T"}},
				{RHS: []string{"T"}},
			}},
			{NonTerminal: "T", Productions: []grammar.ProductionDecl{
				{RHS: []string{"T", "*", "F"}},
				{RHS: []string{"F"}},
			}},
			{NonTerminal: "F", Productions: []grammar.ProductionDecl{
				{RHS: []string{"(", "E", ")"}},
				{RHS: []string{"id"}},
			}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error building grammar: %v", err)
	}
	return g
}

func Test_Build_NoUnresolvedConflictsWithPrecedence(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	tbl := buildTables(t, g, Options{Expect: 0})
	assert.Equal(0, tbl.Unresolved)
	assert.Empty(tbl.Conflicts)
}

func Test_Build_AcceptActionPresent(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	tbl := buildTables(t, g, Options{Expect: 0})

	a := automaton.Build(g)
	found := false
	for s := range tbl.Action {
		cell := tbl.Action[s][g.EOI()]
		for _, act := range cell.Actions {
			if act.Kind == ActionAccept {
				found = true
			}
		}
	}
	assert.True(found, "expected an accept action on *eoi* somewhere in the table")
	_ = a
}

func Test_Build_ReduceReduceConflictReported(t *testing.T) {
	assert := assert.New(t)

	// S -> A | B ; A -> id ; B -> id. Both A and B reduce on whatever
	// follows "id", a textbook reduce/reduce conflict with no precedence to
	// disambiguate it.
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}},
		nil,
		[]grammar.RuleDecl{
			{NonTerminal: "S", Productions: []grammar.ProductionDecl{
				{RHS: []string{"A"}},
				{RHS: []string{"B"}},
			}},
			{NonTerminal: "A", Productions: []grammar.ProductionDecl{
				{RHS: []string{"id"}},
			}},
			{NonTerminal: "B", Productions: []grammar.ProductionDecl{
				{RHS: []string{"id"}},
			}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error building grammar: %v", err)
	}

	tbl, err := buildTablesExpectingError(t, g, Options{Expect: 0})
	assert.Error(err)
	assert.Equal(1, tbl.Unresolved)
	assert.Len(tbl.Conflicts, 1)
	assert.Equal("reduce/reduce", tbl.Conflicts[0].Kind)

	// production 3 (A -> id, declared before B -> id) must win per "smaller
	// production id wins".
	winner := tbl.Action[tbl.Conflicts[0].State][tbl.Conflicts[0].Terminal].Actions[0]
	assert.Equal(ActionReduce, winner.Kind)
	assert.Equal(3, winner.Production, "A -> id (declared first, production 3) should win over B -> id (production 4)")
}

func buildTablesExpectingError(t *testing.T, g *grammar.Grammar, opts Options) (*Tables, error) {
	t.Helper()
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	return Build(rel, opts)
}

func Test_Build_ExpectBudgetSuppressesFailure(t *testing.T) {
	assert := assert.New(t)
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}},
		nil,
		[]grammar.RuleDecl{
			{NonTerminal: "S", Productions: []grammar.ProductionDecl{
				{RHS: []string{"A"}},
				{RHS: []string{"B"}},
			}},
			{NonTerminal: "A", Productions: []grammar.ProductionDecl{{RHS: []string{"id"}}}},
			{NonTerminal: "B", Productions: []grammar.ProductionDecl{{RHS: []string{"id"}}}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = buildTablesExpectingError(t, g, Options{Expect: 1})
	assert.NoError(err)
}

func Test_Build_GLRRetainsBothCandidates(t *testing.T) {
	assert := assert.New(t)
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}},
		nil,
		[]grammar.RuleDecl{
			{NonTerminal: "S", Productions: []grammar.ProductionDecl{
				{RHS: []string{"A"}},
				{RHS: []string{"B"}},
			}},
			{NonTerminal: "A", Productions: []grammar.ProductionDecl{{RHS: []string{"id"}}}},
			{NonTerminal: "B", Productions: []grammar.ProductionDecl{{RHS: []string{"id"}}}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tbl := buildTables(t, g, Options{GLR: true})
	assert.Equal(0, tbl.Unresolved)

	found := false
	for s := range tbl.Action {
		for term := range tbl.Action[s] {
			if len(tbl.Action[s][term].Actions) > 1 {
				found = true
			}
		}
	}
	assert.True(found, "GLR mode should retain the conflicting reduce actions in one cell")
}
