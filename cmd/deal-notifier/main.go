// Package main is the entry point for the deal-notifier.
package main

import (
	"context"
	"os"

	"github.com/donaldgifford/deal-notifier/cmd/deal-notifier/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
