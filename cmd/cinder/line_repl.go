package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgomes/cinder/cinder"
	"github.com/peterh/liner"
)

const (
	linePrompt   = "cinder> "
	lineContinue = "   ...> "
	historyFile  = ".cinder_history"
)

type prompter interface {
	Prompt(prompt string) (string, error)
}

// runLineREPL drives the console from a line editor. It is used when the
// terminal cannot host the full-screen interface.
func runLineREPL(c *console) error {
	fmt.Printf("Cinder %s (:help for commands)\n", cinder.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readFragment(ln, linePrompt, lineContinue)
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if handleLine(c, code, os.Stdout, os.Stderr) {
			return nil
		}
	}
}

// handleLine runs one fragment or command and reports whether the user
// asked to quit.
func handleLine(c *console, code string, out, errOut io.Writer) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, ":") {
		switch trimmed {
		case ":quit", ":q":
			return true
		case ":help", ":h":
			for _, h := range consoleHelp {
				fmt.Fprintf(out, "  %-18s %s\n", h.name, h.desc)
			}
			fmt.Fprintf(out, "  %-18s %s\n", ":quit", "Exit")
			return false
		}
		output, handled, err := c.command(trimmed)
		if !handled {
			fmt.Fprintf(errOut, "unknown command %s, type :help\n", strings.Fields(trimmed)[0])
			return false
		}
		writeOutput(out, output)
		if err != nil {
			fmt.Fprintln(errOut, err)
		}
		return false
	}

	output, err := c.eval(code)
	writeOutput(out, output)
	if err != nil {
		fmt.Fprintln(errOut, err)
	}
	return false
}

func writeOutput(w io.Writer, output string) {
	if output != "" {
		fmt.Fprintln(w, output)
	}
}

// readFragment reads lines until they form a complete fragment. A line
// ending in a backslash always continues. ok is false at end of input.
func readFragment(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// ctrl+c abandons the fragment
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, "\\") {
			b.WriteString(strings.TrimSuffix(trimmed, "\\"))
			continue
		}
		b.WriteString(line)
		if !cinder.IsIncomplete(b.String()) {
			return b.String(), true
		}
	}
}
