package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgomes/cinder/cinder"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "emit-ir":
		return emitIRCommand(args[2:])
	case "replay":
		return replayCommand(args[2:])
	case "version":
		fmt.Printf("cinder %s\n", cinder.Version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath   string
	logLevel     string
	logFile      string
	includePaths pathList
	dynamic      bool
	steps        int
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "TOML configuration file (default ./cinder.toml when present)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&c.logFile, "log-file", "", "log file path (default stderr)")
	fs.Var(&c.includePaths, "I", "add an include directory (repeatable)")
	fs.BoolVar(&c.dynamic, "dynamic", false, "resolve unknown names at run time")
	fs.IntVar(&c.steps, "steps", -1, "statement budget per evaluation (0 means unbounded)")
}

// settings merges the configuration file with the flags; flags win.
func (c *commonFlags) settings() (fileConfig, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFile != "" {
		cfg.LogFile = c.logFile
	}
	cfg.IncludePaths = append(cfg.IncludePaths, c.includePaths...)
	if c.dynamic {
		cfg.DynamicLookup = true
	}
	if c.steps >= 0 {
		cfg.StepQuota = c.steps
	}
	return cfg, nil
}

// interpreterConfig builds the interpreter configuration and returns a
// function releasing the log file.
func interpreterConfig(cfg fileConfig, stdout, stderr io.Writer) (cinder.Config, func(), error) {
	logger, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return cinder.Config{}, nil, err
	}
	return cinder.Config{
		Stdout:         stdout,
		Stderr:         stderr,
		Logger:         logger,
		IncludePaths:   cfg.IncludePaths,
		DynamicLookup:  cfg.DynamicLookup,
		StepQuota:      cfg.StepQuota,
		RecursionLimit: cfg.RecursionLimit,
	}, closeLog, nil
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	entry := fs.String("entry", "main", "function to call after loading; empty to only load")
	checkOnly := fs.Bool("check", false, "only compile the file without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("cinder run: source path required")
	}

	settings, err := common.settings()
	if err != nil {
		return err
	}
	in, closeLog, err := loadSource(remaining[0], settings, *checkOnly)
	if err != nil {
		return err
	}
	defer closeLog()

	if *checkOnly || *entry == "" {
		return in.Close()
	}
	if !in.LookupDecl(*entry, nil).Found() {
		in.Close()
		return fmt.Errorf("cinder run: entry function %q not found", *entry)
	}
	result, err := in.Evaluate(*entry + "()")
	if err != nil {
		in.Close()
		return fmt.Errorf("execution failed: %w", err)
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	if result.IsValid() && !result.IsVoid() && result.Int() != 0 {
		return fmt.Errorf("%s returned %s", *entry, result.String())
	}
	return nil
}

// loadSource creates an interpreter and declares the file at path. Its
// includes resolve relative to the file first.
func loadSource(path string, settings fileConfig, syntaxOnly bool) (*cinder.Interpreter, func(), error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve source path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, nil, fmt.Errorf("read source: %w", err)
	}

	cfg, closeLog, err := interpreterConfig(settings, os.Stdout, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	cfg.SyntaxOnly = syntaxOnly
	in, err := cinder.NewInterpreter(cfg)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	if _, err := in.LoadFile(absPath); err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("compile failed: %w", err)
	}
	return in, closeLog, nil
}

func emitIRCommand(args []string) error {
	fs := flag.NewFlagSet("emit-ir", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	output := fs.String("o", "", "write the IR to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("cinder emit-ir: source path required")
	}
	settings, err := common.settings()
	if err != nil {
		return err
	}
	in, closeLog, err := loadSource(fs.Arg(0), settings, false)
	if err != nil {
		return err
	}
	defer closeLog()
	defer in.Close()

	ir, err := in.EmitIR()
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = io.WriteString(os.Stdout, ir)
		return err
	}
	return os.WriteFile(*output, []byte(ir), 0o644)
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	plain := fs.Bool("plain", false, "use a line editor instead of the full-screen interface")
	history := fs.String("history", "", "history database DSN (sqlite3 path, mysql:// or postgres://)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	settings, err := common.settings()
	if err != nil {
		return err
	}
	if *history != "" {
		settings.History = *history
	}

	cfg, closeLog, err := interpreterConfig(settings, nil, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	var store *historyStore
	if settings.History != "" {
		store, err = openHistory(context.Background(), settings.History)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	c, err := newConsole(cfg, store)
	if err != nil {
		return err
	}
	defer c.close()
	if *plain {
		return runLineREPL(c)
	}
	return runREPL(c)
}

func replayCommand(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	history := fs.String("history", "", "history database DSN")
	session := fs.String("session", "", "session to replay (default the most recent)")
	list := fs.Bool("list", false, "list recorded sessions instead of replaying")
	if err := fs.Parse(args); err != nil {
		return err
	}
	settings, err := common.settings()
	if err != nil {
		return err
	}
	if *history != "" {
		settings.History = *history
	}
	if settings.History == "" {
		return errors.New("cinder replay: -history required")
	}

	ctx := context.Background()
	store, err := openHistory(ctx, settings.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if *list {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Println(s)
		}
		return nil
	}

	cfg, closeLog, err := interpreterConfig(settings, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	in, err := cinder.NewInterpreter(cfg)
	if err != nil {
		return err
	}
	defer in.Close()
	return replay(ctx, store, *session, in, os.Stderr)
}

// replay feeds the successful inputs of a recorded session to in.
func replay(ctx context.Context, store *historyStore, session string, in *cinder.Interpreter, errOut io.Writer) error {
	if session == "" {
		latest, err := store.LatestSession(ctx)
		if err != nil {
			return err
		}
		session = latest
	}
	records, err := store.Records(ctx, session)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("cinder replay: session %q has no entries", session)
	}
	for _, rec := range records {
		if !rec.OK {
			continue
		}
		if _, err := in.ProcessLine(rec.Input); err != nil {
			fmt.Fprintf(errOut, "entry %d: %v\n", rec.Seq, err)
		}
	}
	return nil
}

func newLogger(level, file string) (*slog.Logger, func(), error) {
	if level == "" && file == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	w := io.Writer(os.Stderr)
	closeLog := func() {}
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	}
	opts := &slog.HandlerOptions{Level: logLevelFromString(level)}
	return slog.New(slog.NewJSONHandler(w, opts)), closeLog, nil
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run <file>       load a file and call its entry function")
	fmt.Fprintln(os.Stderr, "  repl             start an interactive session")
	fmt.Fprintln(os.Stderr, "  emit-ir <file>   print the LLVM IR of a file")
	fmt.Fprintln(os.Stderr, "  replay           replay a recorded session")
	fmt.Fprintln(os.Stderr, "  version          print the version")
	fmt.Fprintln(os.Stderr, "Common flags:")
	fmt.Fprintln(os.Stderr, "  -config <file>   TOML configuration")
	fmt.Fprintln(os.Stderr, "  -log-level       debug, info, warn, error")
	fmt.Fprintln(os.Stderr, "  -log-file <file> write JSON logs to a file")
	fmt.Fprintln(os.Stderr, "  -I <dir>         add an include directory (repeatable)")
	fmt.Fprintln(os.Stderr, "  -dynamic         resolve unknown names at run time")
	fmt.Fprintln(os.Stderr, "  -steps <n>       statement budget per evaluation")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

type pathList []string

func (l *pathList) String() string {
	return strings.Join(*l, string(os.PathListSeparator))
}

func (l *pathList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
