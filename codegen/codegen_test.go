package codegen

import (
	"testing"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/table"
	"github.com/stretchr/testify/assert"
)

func buildSimpleTables(t *testing.T) *table.Tables {
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
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := table.Build(rel, table.Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tbl
}

func Test_Generate_LALRDriverProducesValidLookingSource(t *testing.T) {
	assert := assert.New(t)
	tbl := buildSimpleTables(t)

	src, err := Generate(tbl, Options{Package: "exprparser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(src)
	assert.Contains(text, "package exprparser")
	assert.Contains(text, "func Parse(actions []grammar.ActionFunc")
	assert.Contains(text, "\"id\"")
	assert.Contains(text, "runtime.NewLALR")
}

func Test_Generate_GLRDriverUsesGLRPackage(t *testing.T) {
	assert := assert.New(t)
	tbl := buildSimpleTables(t)

	src, err := Generate(tbl, Options{Package: "exprparser", Driver: "glr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(src)
	assert.Contains(text, "glr.Run")
	assert.NotContains(text, "runtime.NewLALR")
}

func Test_Generate_UnknownDriverErrors(t *testing.T) {
	assert := assert.New(t)
	tbl := buildSimpleTables(t)

	_, err := Generate(tbl, Options{Driver: "recursive-descent"})
	assert.Error(err)
}
