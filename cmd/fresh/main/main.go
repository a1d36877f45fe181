package main

import (
	"fmt"
	"os"

	"github.com/tonyvu2014/fresh/cmd/fresh"
)

func main() {
	rootCmd := fresh.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, fresh.RenderError(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
