// Command descgen derives schema declarations from the exported types
// of a Go package.
//
// The generated YAML follows the same Go-to-schema mapping the struct
// bridge uses: exported struct types become records, self-referential
// and generic structs become classes, named basic types with exported
// constants become literals, and other named types become aliases.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/funtype/internal/gen"
	"github.com/funvibe/funtype/internal/schema"
)

func main() {
	pkg := flag.String("pkg", ".", "Go package pattern to inspect")
	out := flag.String("out", "", "output file (default: stdout)")
	types := flag.String("types", "", "comma-separated type names (default: all exported types)")
	flag.Parse()

	var only []string
	if *types != "" {
		for _, name := range strings.Split(*types, ",") {
			if name = strings.TrimSpace(name); name != "" {
				only = append(only, name)
			}
		}
	}

	result, err := gen.Inspect(gen.Options{Patterns: []string{*pkg}, Only: only})
	if err != nil {
		fatal(err)
	}
	data, err := gen.Render(result)
	if err != nil {
		fatal(err)
	}
	if _, err := schema.Parse(data, "generated"); err != nil {
		fatal(fmt.Errorf("rendered schema does not load: %w", err))
	}

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "descgen:", err)
	os.Exit(1)
}
