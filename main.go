package main

import (
	"os"

	"github.com/educoach-ai/educoach/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
