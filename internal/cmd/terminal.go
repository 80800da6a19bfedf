package cmd

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// titleLength bounds the query or motion shown in the terminal UI title.
const titleLength = 60

// isTerminal reports whether f is attached to an interactive terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

// interactive reports whether the terminal UI can run: stdin and stdout
// are terminals and plain output was not requested.
func interactive(plain bool) bool {
	return !plain && isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
