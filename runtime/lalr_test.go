package runtime

import (
	"testing"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/lalrgen/token"
	"github.com/stretchr/testify/assert"
)

func buildArithmeticParser(t *testing.T) *LALR {
	t.Helper()
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}, {Name: "+"}, {Name: "*"}, {Name: "("}, {Name: ")"}},
		[]grammar.PrecGroup{
			{Assoc: grammar.AssocLeft, Terminals: []string{"+"}},
			{Assoc: grammar.AssocLeft, Terminals: []string{"*"}},
		},
		[]grammar.RuleDecl{
			{NonTerminal: "E", Productions: []grammar.ProductionDecl{
				{RHS: []string{"E", "+", "T"}, Action: func(c []interface{}) (interface{}, error) {
					return c[0].(int) + c[2].(int), nil
				}},
				{RHS: []string{"T"}, Action: func(c []interface{}) (interface{}, error) { return c[0], nil }},
			}},
			{NonTerminal: "T", Productions: []grammar.ProductionDecl{
				{RHS: []string{"T", "*", "F"}, Action: func(c []interface{}) (interface{}, error) {
					return c[0].(int) * c[2].(int), nil
				}},
				{RHS: []string{"F"}, Action: func(c []interface{}) (interface{}, error) { return c[0], nil }},
			}},
			{NonTerminal: "F", Productions: []grammar.ProductionDecl{
				{RHS: []string{"(", "E", ")"}, Action: func(c []interface{}) (interface{}, error) { return c[1], nil }},
				{RHS: []string{"id"}, Action: func(c []interface{}) (interface{}, error) { return c[0], nil }},
			}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error building grammar: %v", err)
	}

	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := table.Build(rel, table.Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error building tables: %v", err)
	}
	return NewLALR(tbl)
}

func idToken(n int) token.Token {
	return token.Token{Category: "id", Value: n}
}
func opToken(cat string) token.Token {
	return token.Token{Category: cat, Value: cat}
}

func sliceLexer(toks ...token.Token) token.Lexer {
	i := 0
	return func() token.Token {
		if i >= len(toks) {
			return token.EOIToken()
		}
		tok := toks[i]
		i++
		return tok
	}
}

func Test_LALR_Parse_EvaluatesWithPrecedence(t *testing.T) {
	assert := assert.New(t)
	p := buildArithmeticParser(t)

	// 2 + 3 * 4 = 14, precedence must bind * tighter than +
	lexer := sliceLexer(idToken(2), opToken("+"), idToken(3), opToken("*"), idToken(4))
	value, err := p.Parse(lexer, func(msg string, _ *token.Token) { t.Errorf("unexpected syntax error: %s", msg) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(14, value)
}

func Test_LALR_Parse_Parenthesized(t *testing.T) {
	assert := assert.New(t)
	p := buildArithmeticParser(t)

	// (2 + 3) * 4 = 20
	lexer := sliceLexer(opToken("("), idToken(2), opToken("+"), idToken(3), opToken(")"), opToken("*"), idToken(4))
	value, err := p.Parse(lexer, func(msg string, _ *token.Token) { t.Errorf("unexpected syntax error: %s", msg) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(20, value)
}

func Test_LALR_Parse_ErrorRecovery(t *testing.T) {
	assert := assert.New(t)

	// S -> STMT STMT ; STMT -> id id ; | error ;
	g, err := grammar.NewGrammar(
		[]grammar.TerminalDecl{{Name: "id"}, {Name: ";"}},
		nil,
		[]grammar.RuleDecl{
			{NonTerminal: "S", Productions: []grammar.ProductionDecl{
				{RHS: []string{"STMT", "STMT"}, Action: func(c []interface{}) (interface{}, error) {
					return []interface{}{c[0], c[1]}, nil
				}},
			}},
			{NonTerminal: "STMT", Productions: []grammar.ProductionDecl{
				{RHS: []string{"id", "id", ";"}, Action: func(c []interface{}) (interface{}, error) {
					return "ok", nil
				}},
				{RHS: []string{"*error*", ";"}, Action: func(c []interface{}) (interface{}, error) {
					return "recovered", nil
				}},
			}},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error building grammar: %v", err)
	}

	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := table.Build(rel, table.Options{Expect: 0})
	if err != nil {
		t.Fatalf("unexpected error building tables: %v (conflicts:\n%s)", err, table.ConflictListing(tbl))
	}

	p := NewLALR(tbl)

	// First STMT starts "id id" then hits an unexpected "id" instead of
	// ";"; recovery should discard up to and including the next ";" and
	// then parse the second STMT ("id id ;") successfully.
	lexer := sliceLexer(
		token.Token{Category: "id"}, token.Token{Category: "id"},
		token.Token{Category: "id"}, token.Token{Category: "+"}, token.Token{Category: "id"}, token.Token{Category: ";"},
		token.Token{Category: "id"}, token.Token{Category: "id"}, token.Token{Category: ";"},
	)

	var errCount int
	_, err = p.Parse(lexer, func(msg string, _ *token.Token) { errCount++ })
	if err != nil {
		t.Fatalf("unexpected unrecoverable error: %v", err)
	}
	assert.Equal(1, errCount, "on-error should be invoked exactly once per syntax-error episode")
}
