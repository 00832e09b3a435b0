/*
Lalrtrace is an interactive REPL for stepping an LALR(1) driver through a
token sequence one line at a time, printing the shift/reduce/accept trace
for each step.

Usage:

	lalrtrace [flags] MANIFEST.toml

The flags are:

	-v, --version
		Give the current version of lalrtrace and then exit.

Once started, each line of input is split on whitespace into a sequence of
terminal category names (token values are always nil, since a manifest
cannot carry semantic actions); lalrtrace feeds them through the grammar's
LALR(1) driver and prints the trace of every shift, reduce, and accept,
followed by the syntax-error message for any token the table rejects. Type
"QUIT" to exit.

Grounded on cmd/tqi's interactive loop, reading lines via
github.com/chzyer/readline instead of the game's own command reader.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/lalrgen/automaton"
	"github.com/dekarrin/lalrgen/grammar"
	"github.com/dekarrin/lalrgen/internal/manifest"
	"github.com/dekarrin/lalrgen/internal/version"
	"github.com/dekarrin/lalrgen/lalr"
	"github.com/dekarrin/lalrgen/runtime"
	"github.com/dekarrin/lalrgen/table"
	"github.com/dekarrin/lalrgen/token"
)

const (
	ExitSuccess = iota
	ExitBuildError
	ExitManifestError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
)

func main() {
	defer func() {
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "ERROR: exactly one manifest file must be given")
		returnCode = ExitManifestError
		return
	}

	man, err := manifest.Load(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitManifestError
		return
	}

	g, err := buildGrammar(man)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}
	a := automaton.Build(g)
	rel := lalr.Compute(a)
	tbl, err := table.Build(rel, table.Options{Expect: man.Expect})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s (conflicts:\n%s)\n", err.Error(), table.ConflictListing(tbl))
		returnCode = ExitBuildError
		return
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "trace> "})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline config: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}
	defer rl.Close()

	fmt.Printf("lalrtrace %s: %d states, %d unresolved conflicts\n", version.Current, len(tbl.Action), tbl.Unresolved)
	fmt.Println(`enter a whitespace-separated token sequence, or "QUIT" to exit`)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			return
		}

		runTrace(tbl, line)
	}
}

func buildGrammar(man *manifest.Manifest) (*grammar.Grammar, error) {
	terminals, precGroups, rules := man.Grammar()
	return grammar.NewGrammar(terminals, precGroups, rules)
}

func runTrace(tbl *table.Tables, line string) {
	cats := strings.Fields(line)
	lexer := traceLexer(cats)

	p := runtime.NewLALR(tbl)
	p.RegisterTraceListener(func(msg string) { fmt.Println(msg) })

	_, err := p.Parse(lexer, func(msg string, tok *token.Token) {
		fmt.Printf("syntax error: %s\n", msg)
	})
	if err != nil {
		fmt.Printf("unrecoverable: %s\n", err.Error())
	}
}

func traceLexer(cats []string) token.Lexer {
	i := 0
	return func() token.Token {
		if i >= len(cats) {
			return token.EOIToken()
		}
		tok := token.Token{Category: cats[i]}
		i++
		return tok
	}
}
