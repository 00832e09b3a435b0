package main

import (
	"fmt"
	"os"

	lalrgen "github.com/dekarrin/lalrgen"
	"github.com/dekarrin/lalrgen/internal/manifest"
)

// build runs the Generator Interface pipeline over man. A TOML manifest
// cannot carry semantic-action closures, so this only ever exercises the
// output:/out-table: side effects — the caller supplying actions at runtime
// to a generated driver's Parse function is the actual consumer (spec
// §6.1's split between generation time and parse time).
func build(man *manifest.Manifest) error {
	terminals, precGroups, rules := man.Grammar()

	opts := lalrgen.Options{Expect: man.Expect, Driver: man.Driver, OutTable: man.OutTable}
	if man.Output != nil {
		opts.Output = &lalrgen.Output{Name: man.Output.Name, Path: man.Output.Path}
	}

	p, err := lalrgen.Generate(terminals, precGroups, rules, opts)
	if err != nil {
		return err
	}

	for _, w := range p.Warnings() {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w.String())
	}

	return nil
}

func loadManifest(path string) (*manifest.Manifest, error) {
	return manifest.Load(path)
}
