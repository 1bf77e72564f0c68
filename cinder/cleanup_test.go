package cinder

import (
	"errors"
	"reflect"
	"testing"
)

func TestCleanupsRunInReverseOrder(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	var order []string
	record := func(arg any) error {
		order = append(order, arg.(string))
		return nil
	}
	for i, name := range []string{"A", "B", "C"} {
		if handle := in.RegisterCleanup(record, name, "test"); handle != i {
			t.Fatalf("expected handle %d, got %d", i, handle)
		}
	}
	if err := in.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"C", "B", "A"}) {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestCleanupFailureStopsTeardown(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	boom := errors.New("boom")
	var order []string
	in.RegisterCleanup(func(any) error { order = append(order, "A"); return nil }, nil, "test")
	in.RegisterCleanup(func(any) error { order = append(order, "B"); return boom }, nil, "test")
	in.RegisterCleanup(func(any) error { order = append(order, "C"); return nil }, nil, "test")

	if err := in.Close(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !reflect.DeepEqual(order, []string{"C", "B"}) {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestCleanupRecordsTransaction(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare("int x = 1;"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	in.RegisterCleanup(func(any) error { return nil }, nil, "test")
	if got := in.cleanups.entries[0].tx; got != in.LastTransaction() {
		t.Fatalf("cleanup should be tagged with the last transaction")
	}
}
