// Package main is the entry point for the helpsresolver CLI.
package main

import (
	"os"

	"HelpsResolver/cmd/helpsresolver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
