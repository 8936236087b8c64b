package main

import (
	"os"

	"github.com/driftline/driftline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
