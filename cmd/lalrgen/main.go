/*
Lalrgen builds an LALR(1) (or GLR) parser table from a grammar manifest and
writes a generated driver source file, a human-readable table dump, or both.

Usage:

	lalrgen [flags] MANIFEST.toml

The flags are:

	-v, --version
		Give the current version of lalrgen and then exit.

	-e, --expect N
		Override the manifest's expect: unresolved-conflict budget.

	-d, --driver lalr|glr
		Override the manifest's driver: option.

	-o, --out-table FILE
		Override the manifest's out-table: path.

The manifest is a TOML file describing terminals, precedence groups, and
nonterminal rules exactly as spec §6.1's "structured data, not source
syntax" input requires; see internal/manifest for its shape.
Semantic actions cannot be expressed in TOML, so a manifest-driven build
only ever emits a driver (via output:) for a caller to wire actions into
at runtime — it never runs a parse itself.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lalrgen/internal/version"
)

const (
	ExitSuccess = iota
	ExitBuildError
	ExitManifestError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagExpect  = pflag.IntP("expect", "e", -1, "Override the manifest's expect: unresolved-conflict budget")
	flagDriver  = pflag.StringP("driver", "d", "", "Override the manifest's driver: option (lalr or glr)")
	flagOutTbl  = pflag.StringP("out-table", "o", "", "Override the manifest's out-table: path")
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

	manifestPath := pflag.Arg(0)
	man, err := loadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitManifestError
		return
	}

	if *flagExpect >= 0 {
		man.Expect = *flagExpect
	}
	if *flagDriver != "" {
		man.Driver = *flagDriver
	}
	if *flagOutTbl != "" {
		man.OutTable = *flagOutTbl
	}

	if err := build(man); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}
}
