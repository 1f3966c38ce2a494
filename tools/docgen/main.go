// Package main generates CLI reference documentation from the deal-notifier
// and dnctl command trees.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	daemoncmd "github.com/donaldgifford/deal-notifier/cmd/deal-notifier/cmd"
	dnctlcmd "github.com/donaldgifford/deal-notifier/cmd/dnctl/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	if err := generate(*output); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}

// generate writes one markdown tree per binary under dir.
func generate(dir string) error {
	for name, root := range map[string]*cobra.Command{
		"deal-notifier": daemoncmd.Root(),
		"dnctl":         dnctlcmd.Root(),
	} {
		out := filepath.Join(dir, name)
		if err := os.MkdirAll(out, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		root.DisableAutoGenTag = true

		if err := doc.GenMarkdownTree(root, out); err != nil {
			return fmt.Errorf("generating %s docs: %w", name, err)
		}
	}
	return nil
}
