// Package main is the entry point for the advisor service.
package main

import (
	"os"

	"github.com/collectwise/advisor/cmd/advisor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
