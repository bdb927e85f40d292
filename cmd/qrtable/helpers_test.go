package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-qrtable"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock renderer and pool
// ---------------------------------------------------------------------------

// mockRenderer returns a fixed result or error and records inputs.
type mockRenderer struct {
	mu     sync.Mutex
	inputs []qrtable.Input
	result *qrtable.Result
	err    error
}

func (m *mockRenderer) Build(_ context.Context, input qrtable.Input) (*qrtable.Result, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	res := &qrtable.Result{
		HTML: []byte("<html><body><table></table></body></html>"),
		Rows: []qrtable.Row{{Entry: qrtable.Entry{Ref: "01", URL: "https://a.example/", Title: "A"}}},
	}
	if !input.HTMLOnly {
		res.PDF = []byte("%PDF-1.4 mock")
	}
	return res, nil
}

func (m *mockRenderer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// mockPool hands out the same renderer.
type mockPool struct {
	renderer   Renderer
	size       int
	acquireErr error
	opts       []qrtable.Option
	closed     bool
}

func (p *mockPool) Acquire() (Renderer, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.renderer, nil
}

func (p *mockPool) Release(Renderer) {}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.closed = true
	return nil
}

// testEnv returns an Environment writing to buffers and using pool.
func testEnv(pool *mockPool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		NewPool: func(size int, opts ...qrtable.Option) Pool {
			if pool.size == 0 {
				pool.size = size
			}
			pool.opts = opts
			return pool
		},
	}
	return env, &stdout, &stderr
}

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return p
}

const sampleMarkdown = `# Notes

See the docs.[^1]

QRCodeTable

[^1]: https://a.example/
`
