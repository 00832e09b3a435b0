// Package lalrgen is the façade tying Grammar Intake, the LR(0) Builder,
// the DeRemer-Pennello relation engine, the Table Assembler, the GLR
// extension, and the Driver Emitter into the single entry point spec §6.1
// describes: structured grammar data plus an options map in, a parser
// object callable as parse(lexer, on-error) out.
//
// Mirrors the shape of the teacher's internal/ictiobus/ictiobus.go, which
// exposes one small set of NewXParser constructors over the package's
// internal phases rather than making callers wire automaton/lalr/table
// themselves.
package lalrgen

import (
	"fmt"
	"os"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/codegen"
	"github.com/dekarrin/lalrgen/glr"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/runtime"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/lalrgen/token"
)

// Output names where the Driver Emitter should write a generated driver
// (spec §6.1 "output: (name, path)"). Name becomes the emitted package name.
type Output struct {
	Name string
	Path string
}

// Options is the spec §6.1 options map.
type Options struct {
	// Output, if non-nil, emits a standalone driver source file via the
	// Driver Emitter (component F).
	Output *Output

	// OutTable, if non-empty, writes the §6.3 human-readable table dump to
	// this path.
	OutTable string

	// Expect is the unresolved shift/reduce or reduce/reduce conflict
	// budget; exceeding it fails generation with KindUnexpectedConflicts.
	Expect int

	// Driver selects "glr" for the GLR extension (component E), or leaves
	// the zero value for the deterministic LALR(1) driver.
	Driver string
}

// Parser is the generator's output: a table-bound parser object callable as
// parse(lexer, on-error), per spec §6.2. In GLR mode, Parse's returned value
// is a []interface{} of every surviving parse's semantic value; in LALR
// mode it is the single accepted value.
type Parser struct {
	Tables *table.Tables
	isGLR  bool
}

// Warnings returns the non-fatal grammar diagnostics Intake found for this
// Parser's grammar: unreachable productions and useless nonterminals. These
// never prevent Generate from succeeding; callers that care (cmd/lalrgen
// prints them) inspect this after a successful call.
func (p *Parser) Warnings() []grammar.Warning {
	return p.Tables.Grammar.Warnings()
}

// Parse runs the bound tables against lexer, invoking onError on syntax
// errors per spec §6.2.
func (p *Parser) Parse(lexer token.Lexer, onError token.OnError) (interface{}, error) {
	if p.isGLR {
		result, err := glr.Run(p.Tables, lexer, onError)
		if err != nil {
			return nil, err
		}
		return result.Values, nil
	}
	return runtime.NewLALR(p.Tables).Parse(lexer, onError)
}

// Generate runs Grammar Intake, the LR(0) Builder, the relation engine, and
// the Table Assembler over the given structured grammar, applies opts, and
// returns the resulting Parser. When opts.Output or opts.OutTable name a
// path, the corresponding artifact is written as a side effect.
func Generate(terminals []grammar.TerminalDecl, precGroups []grammar.PrecGroup, rules []grammar.RuleDecl, opts Options) (*Parser, error) {
	g, err := grammar.NewGrammar(terminals, precGroups, rules)
	if err != nil {
		return nil, err
	}

	isGLR := opts.Driver == "glr"

	var tbl *table.Tables
	if isGLR {
		tbl = glr.BuildTables(g)
	} else {
		a := automaton.Build(g)
		rel := lalr.Compute(a)
		tbl, err = table.Build(rel, table.Options{Expect: opts.Expect})
		if err != nil {
			return nil, err
		}
	}

	if opts.OutTable != "" {
		dump := table.NewDump(tbl)
		if err := os.WriteFile(opts.OutTable, []byte(dump.String()), 0o644); err != nil {
			return nil, fmt.Errorf("lalrgen: writing out-table %s: %w", opts.OutTable, err)
		}
	}

	if opts.Output != nil {
		driver := "lalr"
		if isGLR {
			driver = "glr"
		}
		src, err := codegen.Generate(tbl, codegen.Options{Package: opts.Output.Name, Driver: driver})
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(opts.Output.Path, src, 0o644); err != nil {
			return nil, fmt.Errorf("lalrgen: writing output %s: %w", opts.Output.Path, err)
		}
	}

	return &Parser{Tables: tbl, isGLR: isGLR}, nil
}
