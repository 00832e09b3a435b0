package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/lalrgen/grammar"
)

const sample = `
expect = 0
driver = "lalr"
out_table = "tables.txt"

[[terminal]]
name = "id"

[[terminal]]
name = "+"

[[precedence]]
assoc = "left"
terminals = ["+"]

[[rule]]
nonterminal = "E"

[[rule.production]]
rhs = ["E", "+", "E"]

[[rule.production]]
rhs = ["id"]

[output]
name = "exprparser"
path = "driver.go"
`

func Test_Load_ParsesManifest(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "grammar.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	man, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(0, man.Expect)
	assert.Equal("lalr", man.Driver)
	assert.Equal("tables.txt", man.OutTable)
	assert.Len(man.Terminals, 2)
	assert.Len(man.Precedence, 1)
	if assert.Len(man.Rules, 1) {
		assert.Equal("E", man.Rules[0].NonTerminal)
		assert.Len(man.Rules[0].Productions, 2)
	}
	if assert.NotNil(man.Output) {
		assert.Equal("exprparser", man.Output.Name)
	}
}

func Test_Manifest_Grammar_BuildsValidGrammar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grammar.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	man, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	terminals, precGroups, rules := man.Grammar()
	g, err := grammar.NewGrammar(terminals, precGroups, rules)
	if err != nil {
		t.Fatalf("unexpected error building grammar from manifest: %v", err)
	}
	assert.New(t).Equal("E", g.Symbol(g.StartSymbol()).Name)
}

func Test_Load_RejectsManifestWithNoRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(path, []byte("expect = 0\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := Load(path)
	assert.New(t).Error(err)
}
