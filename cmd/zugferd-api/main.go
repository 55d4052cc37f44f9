package main

import (
	"fmt"
	"os"

	"github.com/jonaboe98/zugferd-api/cmd/zugferd-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
