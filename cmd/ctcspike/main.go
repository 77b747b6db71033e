package main

import (
	"os"

	"github.com/spchkit/ctcspike/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
