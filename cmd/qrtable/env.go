package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-qrtable"
)

// Environment is everything a command touches outside its arguments.
// Tests swap in buffers, a fixed clock and a mock pool.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...qrtable.Option) Pool
}

// DefaultEnv wires the process streams and a real Builder pool.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewPool: func(size int, opts ...qrtable.Option) Pool {
			return &poolAdapter{pool: qrtable.NewBuilderPool(size, opts...)}
		},
	}
}
