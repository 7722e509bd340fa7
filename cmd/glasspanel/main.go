package main

import (
	"os"

	"github.com/glassbreakers/glasspanel/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
