// CleaveMap - Peptide cleavage mapping tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/cleavemap/cmd/cleavemap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
