// Package main provides the structview command-line tool.
package main

import (
	"errors"
	"os"

	"github.com/structview/structview/internal/cli"
	"github.com/structview/structview/internal/cli/commands"
)

// Exit codes.
const (
	exitError   = 1
	exitInvalid = 2
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, commands.ErrInvalidModel) {
			os.Exit(exitInvalid)
		}
		os.Exit(exitError)
	}
}
