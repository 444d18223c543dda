// Package main is the entry point for the spider2 scheduling runtime.
package main

import (
	"fmt"
	"os"

	"github.com/preesm/spider2/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
