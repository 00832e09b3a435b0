// Package manifest loads the TOML build file both cmd/lalrgen and
// cmd/lalrtrace read, translating it into the structured grammar.TerminalDecl
// / grammar.PrecGroup / grammar.RuleDecl values spec §6.1 takes as input.
//
// A manifest cannot carry semantic-action closures (TOML is data, not code),
// so every production declared here has a nil grammar.ActionFunc; callers
// that need real actions wire them in after the fact (cmd/lalrgen emits a
// driver for exactly this purpose; cmd/lalrtrace just traces bare state
// transitions).
//
// Grounded on the teacher's internal/tqw TOML-decoded FileInfo/Manifest
// structs (github.com/BurntSushi/toml.Unmarshal over a []byte read with
// os.ReadFile).
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/lalrgen/grammar"
)

// Manifest is the TOML shape of a grammar build file.
type Manifest struct {
	Terminals  []TerminalDecl   `toml:"terminal"`
	Precedence []PrecGroup      `toml:"precedence"`
	Rules      []RuleDecl       `toml:"rule"`
	Output     *OutputSpec      `toml:"output"`
	OutTable   string           `toml:"out_table"`
	Expect     int              `toml:"expect"`
	Driver     string           `toml:"driver"`
}

// TerminalDecl declares one terminal symbol.
type TerminalDecl struct {
	Name string `toml:"name"`
}

// PrecGroup declares a precedence level shared by a set of terminals.
type PrecGroup struct {
	Assoc     string   `toml:"assoc"`
	Terminals []string `toml:"terminals"`
}

// RuleDecl declares every alternative for one nonterminal.
type RuleDecl struct {
	NonTerminal string           `toml:"nonterminal"`
	Productions []ProductionDecl `toml:"production"`
}

// ProductionDecl is one alternative of a rule.
type ProductionDecl struct {
	RHS  []string `toml:"rhs"`
	Prec string   `toml:"prec"`
}

// OutputSpec names where the Driver Emitter should write a generated driver.
type OutputSpec struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var man Manifest
	if err := toml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(man.Rules) == 0 {
		return nil, fmt.Errorf("manifest %s declares no [[rule]] blocks", path)
	}
	return &man, nil
}

func assocFromString(s string) grammar.Assoc {
	switch s {
	case "left":
		return grammar.AssocLeft
	case "right":
		return grammar.AssocRight
	case "nonassoc":
		return grammar.AssocNonAssoc
	default:
		return grammar.AssocNone
	}
}

// Grammar translates man into the structured-data arguments grammar.NewGrammar
// (and lalrgen.Generate) expect.
func (man *Manifest) Grammar() ([]grammar.TerminalDecl, []grammar.PrecGroup, []grammar.RuleDecl) {
	terminals := make([]grammar.TerminalDecl, len(man.Terminals))
	for i, td := range man.Terminals {
		terminals[i] = grammar.TerminalDecl{Name: td.Name}
	}

	precGroups := make([]grammar.PrecGroup, len(man.Precedence))
	for i, pg := range man.Precedence {
		precGroups[i] = grammar.PrecGroup{Assoc: assocFromString(pg.Assoc), Terminals: pg.Terminals}
	}

	rules := make([]grammar.RuleDecl, len(man.Rules))
	for i, r := range man.Rules {
		prods := make([]grammar.ProductionDecl, len(r.Productions))
		for j, p := range r.Productions {
			prods[j] = grammar.ProductionDecl{RHS: p.RHS, Prec: p.Prec}
		}
		rules[i] = grammar.RuleDecl{NonTerminal: r.NonTerminal, Productions: prods}
	}

	return terminals, precGroups, rules
}
