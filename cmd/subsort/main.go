package main

import (
	"os"

	"github.com/subsort/subsort/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
