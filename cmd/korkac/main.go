package main

import (
	"os"

	"korka/cmd/korkac/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
