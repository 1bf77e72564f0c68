package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgomes/cinder/cinder"
)

// console is the session state shared by both REPL front ends: the
// interpreter, the buffer its output lands in and the optional history
// store.
type console struct {
	cfg     cinder.Config
	in      *cinder.Interpreter
	out     *bytes.Buffer
	store   *historyStore
	session string
	seq     int
}

func newConsole(cfg cinder.Config, store *historyStore) (*console, error) {
	c := &console{
		cfg:     cfg,
		out:     new(bytes.Buffer),
		store:   store,
		session: newSessionID(time.Now()),
	}
	if err := c.start(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *console) start() error {
	cfg := c.cfg
	cfg.Stdout = c.out
	cfg.Stderr = c.out
	in, err := cinder.NewInterpreter(cfg)
	if err != nil {
		return err
	}
	c.in = in
	return nil
}

// eval runs one fragment and returns everything it printed.
func (c *console) eval(input string) (string, error) {
	c.out.Reset()
	_, err := c.in.ProcessLine(input)
	c.record(input, err == nil)
	output := strings.TrimRight(c.out.String(), "\n")
	c.out.Reset()
	return output, err
}

func (c *console) record(input string, ok bool) {
	if c.store == nil {
		return
	}
	c.seq++
	rec := historyRecord{Session: c.session, Seq: c.seq, Input: input, OK: ok}
	if err := c.store.Record(context.Background(), rec); err != nil {
		fmt.Fprintf(c.out, "warning: %v\n", err)
	}
}

var consoleHelp = []struct {
	name string
	desc string
}{
	{":decls", "List declarations"},
	{":tx [n]", "Show a transaction (default the last)"},
	{":ast [n]", "Draw the syntax tree of a transaction"},
	{":ir", "Print the LLVM IR of the program"},
	{":raw <code>", "Declare code at the top level"},
	{":load <file>", "Load a source file"},
	{":dynamic [on|off]", "Toggle run-time name lookup"},
	{":print [mode]", "Value printing: auto, enabled or disabled"},
	{":reset", "Start a fresh interpreter"},
}

// command handles the colon commands both front ends understand. handled
// is false when input is not one of them.
func (c *console) command(input string) (output string, handled bool, err error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":decls", ":d":
		return c.decls(), true, nil
	case ":tx":
		tx, err := c.transaction(arg)
		if err != nil {
			return "", true, err
		}
		return describeTransaction(tx), true, nil
	case ":ast":
		tx, err := c.transaction(arg)
		if err != nil {
			return "", true, err
		}
		return strings.TrimRight(cinder.RenderTransaction(tx), "\n"), true, nil
	case ":ir":
		ir, err := c.in.EmitIR()
		return strings.TrimRight(ir, "\n"), true, err
	case ":raw":
		if arg == "" {
			return "", true, errors.New("usage: :raw <code>")
		}
		c.out.Reset()
		res, err := c.in.ProcessRawLine(arg)
		c.record(input, err == nil)
		output := strings.TrimRight(c.out.String(), "\n")
		if err == nil && res.Decl != nil {
			output = strings.TrimLeft(output+"\ndeclared "+cinder.QualifiedName(res.Decl), "\n")
		}
		return output, true, err
	case ":load":
		if arg == "" {
			return "", true, errors.New("usage: :load <file>")
		}
		path, err := filepath.Abs(arg)
		if err != nil {
			return "", true, err
		}
		c.out.Reset()
		tx, err := c.in.LoadFile(path)
		output := strings.TrimRight(c.out.String(), "\n")
		if err != nil {
			return output, true, err
		}
		return strings.TrimLeft(fmt.Sprintf("%s\nloaded %d declarations", output, len(tx.Decls())), "\n"), true, nil
	case ":dynamic":
		switch arg {
		case "":
			c.in.EnableDynamicLookup(!c.in.IsDynamicLookupEnabled())
		case "on":
			c.in.EnableDynamicLookup(true)
		case "off":
			c.in.EnableDynamicLookup(false)
		default:
			return "", true, errors.New("usage: :dynamic [on|off]")
		}
		if c.in.IsDynamicLookupEnabled() {
			return "dynamic lookup on", true, nil
		}
		return "dynamic lookup off", true, nil
	case ":print":
		if arg != "" {
			mode, err := parseValuePrinting(arg)
			if err != nil {
				return "", true, err
			}
			c.in.SetValuePrinting(mode)
		}
		return "value printing " + c.in.ValuePrinting().String(), true, nil
	case ":reset", ":r":
		if err := c.reset(); err != nil {
			return "", true, err
		}
		return "Interpreter reset", true, nil
	}
	return "", false, nil
}

// decls lists the user declarations of every transaction.
func (c *console) decls() string {
	var lines []string
	for _, tx := range c.in.Transactions() {
		for _, d := range tx.Decls() {
			if isWrapperDecl(d) {
				continue
			}
			lines = append(lines, describeDecl(d))
		}
	}
	if len(lines) == 0 {
		return "no declarations"
	}
	return strings.Join(lines, "\n")
}

func (c *console) transaction(arg string) (*cinder.Transaction, error) {
	txs := c.in.Transactions()
	if len(txs) == 0 {
		return nil, errors.New("no transactions")
	}
	if arg == "" {
		return txs[len(txs)-1], nil
	}
	var idx int
	if _, err := fmt.Sscanf(arg, "%d", &idx); err != nil {
		return nil, fmt.Errorf("invalid transaction index %q", arg)
	}
	for _, tx := range txs {
		if tx.Index() == idx {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("no transaction %d", idx)
}

// reset runs the cleanups of the current interpreter and starts another
// with the same configuration and printing mode.
func (c *console) reset() error {
	mode := c.in.ValuePrinting()
	closeErr := c.in.Close()
	if err := c.start(); err != nil {
		return err
	}
	c.in.SetValuePrinting(mode)
	return closeErr
}

func (c *console) close() error {
	err := c.in.Close()
	if errors.Is(err, cinder.ErrClosed) {
		return nil
	}
	return err
}

func parseValuePrinting(name string) (cinder.ValuePrinting, error) {
	switch name {
	case "auto":
		return cinder.ValuePrintingAuto, nil
	case "enabled", "on":
		return cinder.ValuePrintingEnabled, nil
	case "disabled", "off":
		return cinder.ValuePrintingDisabled, nil
	default:
		return 0, fmt.Errorf("unknown value printing mode %q", name)
	}
}

func isWrapperDecl(d cinder.Decl) bool {
	fn, ok := d.(*cinder.FuncDecl)
	return ok && fn.Wrapper
}

func describeDecl(d cinder.Decl) string {
	switch decl := d.(type) {
	case *cinder.VarDecl:
		return fmt.Sprintf("var %s %s", decl.Type.String(), cinder.QualifiedName(decl))
	case *cinder.FuncDecl:
		var params []string
		for _, t := range decl.ParamTypes() {
			params = append(params, t.String())
		}
		return fmt.Sprintf("func %s %s(%s)", decl.Result.String(), cinder.QualifiedName(decl), strings.Join(params, ", "))
	case *cinder.ClassDecl:
		return "class " + cinder.QualifiedName(decl)
	case *cinder.NamespaceDecl:
		return "namespace " + cinder.QualifiedName(decl)
	default:
		return d.DeclName()
	}
}
