package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Global flags shared by commands that may install
var assumeYes bool

// isTTY reports whether f is attached to a terminal.
func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// confirm asks a yes/no question. Without a terminal on stdin it proceeds
// without asking, as it does when --yes is set. Empty input means yes.
func confirm(w io.Writer, r io.Reader, interactive bool, question string) bool {
	if assumeYes || !interactive {
		return true
	}

	fmt.Fprintf(w, "? %s [Y/n] ", question)
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		fmt.Fprintln(w)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// confirmInstall prompts on the real terminal.
func confirmInstall(question string) bool {
	return confirm(os.Stderr, os.Stdin, isTTY(os.Stdin) && !jsonOutput, question)
}
