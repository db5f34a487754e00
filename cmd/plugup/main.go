// Package main is the entry point for the plugup CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/plugup/cmd/plugup/commands"
	"github.com/thoreinstein/plugup/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	// ExitError carries the exit code and an optional suggestion. A nil
	// inner error means the code is the whole message (doctor --quiet).
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		}
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(errors.ExitUser)
}
