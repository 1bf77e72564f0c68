package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"cinder", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	for _, args := range [][]string{{"cinder"}, {"cinder", "unknown"}} {
		err := runCLI(args)
		if err == nil || !strings.Contains(err.Error(), "invalid command") {
			t.Fatalf("runCLI(%v): expected invalid command error, got %v", args, err)
		}
	}
}

func TestRunCommandCallsMain(t *testing.T) {
	path := writeSource(t, `int main() { println("hello"); return 0; }`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "hello\n" {
		t.Fatalf("unexpected stdout %q", out)
	}
}

func TestRunCommandNonZeroResult(t *testing.T) {
	path := writeSource(t, `int main() { return 3; }`)
	err := runCommand([]string{path})
	if err == nil || !strings.Contains(err.Error(), "main returned 3") {
		t.Fatalf("expected non-zero result error, got %v", err)
	}
}

func TestRunCommandCustomEntry(t *testing.T) {
	path := writeSource(t, `void start() { print(6 * 7); }`)
	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-entry", "start", path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "42" {
		t.Fatalf("unexpected stdout %q", out)
	}
}

func TestRunCommandMissingEntry(t *testing.T) {
	path := writeSource(t, `int helper() { return 0; }`)
	err := runCommand([]string{path})
	if err == nil || !strings.Contains(err.Error(), `entry function "main" not found`) {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}

func TestRunCommandCheckOnly(t *testing.T) {
	path := writeSource(t, `int main() { println("never"); return 1; }`)
	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-check", path})
	})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if out != "" {
		t.Fatalf("check must not execute, got %q", out)
	}

	bad := writeSource(t, `int main() { return undefined_name; }`)
	if err := runCommand([]string{"-check", bad}); err == nil || !strings.Contains(err.Error(), "compile failed") {
		t.Fatalf("expected compile error, got %v", err)
	}
}

func TestRunCommandRequiresPath(t *testing.T) {
	if err := runCommand(nil); err == nil || !strings.Contains(err.Error(), "source path required") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestRunCommandIncludePaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lib.c"), []byte("int seven() { return 7; }"), 0o644); err != nil {
		t.Fatalf("write include: %v", err)
	}
	path := writeSource(t, "#include \"lib.c\"\nint main() { print(seven()); return 0; }")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-I", dir, path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "7" {
		t.Fatalf("unexpected stdout %q", out)
	}
}

func TestEmitIRCommandWritesFile(t *testing.T) {
	path := writeSource(t, `int square(int x) { return x * x; }`)
	irPath := filepath.Join(t.TempDir(), "out.ll")

	if err := emitIRCommand([]string{"-o", irPath, path}); err != nil {
		t.Fatalf("emit-ir failed: %v", err)
	}
	data, err := os.ReadFile(irPath)
	if err != nil {
		t.Fatalf("read ir: %v", err)
	}
	if !strings.Contains(string(data), "define i64 @_Z6squarel(i64 %x)") {
		t.Fatalf("unexpected IR:\n%s", data)
	}
}

func TestLogLevelFromString(t *testing.T) {
	cases := map[string]string{
		"debug": "DEBUG",
		"INFO":  "INFO",
		"warn":  "WARN",
		"":      "ERROR",
		"bogus": "ERROR",
	}
	for input, want := range cases {
		if got := logLevelFromString(input).String(); got != want {
			t.Fatalf("logLevelFromString(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cinder.log")
	logger, closeLog, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("started", "component", "test")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Contains(data, []byte(`"msg":"started"`)) {
		t.Fatalf("unexpected log contents %q", data)
	}
}

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.c")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
