package main

import (
	"strings"
	"testing"

	"github.com/alnah/go-qrtable"
)

func TestPoolAdapter_Release_WrongType(t *testing.T) {
	t.Parallel()

	pool := qrtable.NewBuilderPool(1)
	defer func() { _ = pool.Close() }()
	adapter := &poolAdapter{pool: pool}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for wrong type, got none")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "unexpected type") {
			t.Errorf("panic = %v, want unexpected type message", r)
		}
	}()
	adapter.Release(&mockRenderer{})
}

func TestPoolAdapter_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := qrtable.NewBuilderPool(2)
	adapter := &poolAdapter{pool: pool}

	if adapter.Size() != 2 {
		t.Errorf("Size() = %d, want 2", adapter.Size())
	}

	r, err := adapter.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if r == nil {
		t.Fatal("Acquire() returned nil")
	}
	adapter.Release(r)

	if err := adapter.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := adapter.Acquire(); err == nil {
		t.Error("Acquire() after Close should fail")
	}
}
