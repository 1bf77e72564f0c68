package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgomes/cinder/cinder"
)

func openTestHistory(t *testing.T) *historyStore {
	t.Helper()
	store, err := openHistory(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParseHistoryDSN(t *testing.T) {
	cases := []struct {
		dsn    string
		driver string
		source string
	}{
		{"history.db", "sqlite3", "history.db"},
		{"sqlite3:///tmp/h.db", "sqlite3", "/tmp/h.db"},
		{"sqlite://h.db", "sqlite3", "h.db"},
		{"mysql://user:pw@tcp(localhost:3306)/cinder", "mysql", "user:pw@tcp(localhost:3306)/cinder?parseTime=true"},
		{"mysql://u@/db?charset=utf8", "mysql", "u@/db?charset=utf8&parseTime=true"},
		{"postgres://u@localhost/cinder?sslmode=disable", "postgres", "postgres://u@localhost/cinder?sslmode=disable"},
		{"postgresql://u@localhost/cinder", "postgres", "postgresql://u@localhost/cinder"},
	}
	for _, tc := range cases {
		driver, source, err := parseHistoryDSN(tc.dsn)
		if err != nil {
			t.Fatalf("parseHistoryDSN(%q) failed: %v", tc.dsn, err)
		}
		if driver != tc.driver || source != tc.source {
			t.Fatalf("parseHistoryDSN(%q) = %s %s, want %s %s", tc.dsn, driver, source, tc.driver, tc.source)
		}
	}
	if _, _, err := parseHistoryDSN(""); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestRebindPostgresPlaceholders(t *testing.T) {
	pg := &historyStore{driver: "postgres"}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind %q", got)
	}
	lite := &historyStore{driver: "sqlite3"}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite3 must keep placeholders, got %q", got)
	}
}

func TestHistoryStoreRecords(t *testing.T) {
	ctx := context.Background()
	store := openTestHistory(t)

	if _, err := store.LatestSession(ctx); err == nil {
		t.Fatalf("expected error for empty history")
	}

	entries := []historyRecord{
		{Session: "first", Seq: 1, Input: "int x = 1;", OK: true},
		{Session: "first", Seq: 2, Input: "x +", OK: false},
		{Session: "second", Seq: 1, Input: "x", OK: true},
	}
	for _, rec := range entries {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	records, err := store.Records(ctx, "first")
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if len(records) != 2 || records[0].Input != "int x = 1;" || records[1].OK {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatalf("expected a creation time")
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if strings.Join(sessions, ",") != "first,second" {
		t.Fatalf("unexpected sessions %v", sessions)
	}
	latest, err := store.LatestSession(ctx)
	if err != nil || latest != "second" {
		t.Fatalf("expected latest session second, got %q %v", latest, err)
	}
}

func TestReplaySkipsFailedEntries(t *testing.T) {
	ctx := context.Background()
	store := openTestHistory(t)
	for i, input := range []string{"int base = 40;", "base +", "int answer = base + 2;"} {
		rec := historyRecord{Session: "s", Seq: i + 1, Input: input, OK: input != "base +"}
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	var out, errOut bytes.Buffer
	in, err := cinder.NewInterpreter(cinder.Config{Stdout: &out, Stderr: &errOut})
	if err != nil {
		t.Fatalf("new interpreter: %v", err)
	}
	defer in.Close()

	if err := replay(ctx, store, "", in, &errOut); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	v, err := in.Evaluate("answer")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %s", v.Describe())
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected replay errors %q", errOut.String())
	}

	if err := replay(ctx, store, "absent", in, &errOut); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}
