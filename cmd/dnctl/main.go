// Package main is the entry point for the dnctl CLI client.
package main

import (
	"github.com/donaldgifford/deal-notifier/cmd/dnctl/cmd"
)

func main() {
	cmd.Execute()
}
