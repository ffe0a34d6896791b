package main

import (
	"os"

	"github.com/chazu/csgstep/cmd/csgstep/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
