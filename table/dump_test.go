package table

import (
	"testing"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/stretchr/testify/assert"
)

func Test_Dump_RoundTrip(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := Build(rel, Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	original := NewDump(tbl)
	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error marshaling: %v", err)
	}

	roundTripped := &Dump{}
	err = roundTripped.UnmarshalBinary(data)
	if err != nil {
		t.Fatalf("unexpected error unmarshaling: %v", err)
	}

	assert.Equal(original, roundTripped)
}

func Test_Dump_String_ContainsProductionsAndSummary(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := Build(rel, Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := NewDump(tbl).String()
	assert.Contains(out, "productions:")
	assert.Contains(out, "unresolved conflict")
}

func Test_ConflictListing_EmptyWhenNoConflicts(t *testing.T) {
	assert := assert.New(t)
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}},
		nil,
		[]grammar.RuleDecl{{NonTerminal: "S", Productions: []grammar.ProductionDecl{{RHS: []string{"id"}}}}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := Build(rel, Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal("", ConflictListing(tbl))
}
