package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-qrtable"
)

// Renderer builds one document.
type Renderer interface {
	Build(ctx context.Context, input qrtable.Input) (*qrtable.Result, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*qrtable.Builder)(nil)

// Pool abstracts Builder pool operations for testability.
type Pool interface {
	Acquire() (Renderer, error)
	Release(Renderer)
	Size() int
	Close() error
}

// poolAdapter exposes a qrtable.BuilderPool as a Pool.
type poolAdapter struct {
	pool *qrtable.BuilderPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (Renderer, error) {
	b, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Release panics when r was not obtained from this adapter.
func (a *poolAdapter) Release(r Renderer) {
	b, ok := r.(*qrtable.Builder)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", r))
	}
	a.pool.Release(b)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

func (a *poolAdapter) Close() error { return a.pool.Close() }
