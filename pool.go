package qrtable

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one builder is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("builder pool closed")

// BuilderPool manages Builders for processing several documents in
// parallel. Each Builder owns its own browser. Builders are created lazily
// on first acquire, all with the same options.
type BuilderPool struct {
	size     int
	opts     []Option
	builders []*Builder
	sem      chan *Builder
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewBuilderPool creates a pool with capacity for n Builders.
func NewBuilderPool(n int, opts ...Option) *BuilderPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &BuilderPool{
		size:     n,
		opts:     opts,
		builders: make([]*Builder, 0, n),
		sem:      make(chan *Builder, n),
	}
}

// Acquire gets a Builder from the pool, creating one if capacity allows.
// Blocks while all Builders are in use.
func (p *BuilderPool) Acquire() (*Builder, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		b, err := NewBuilder(p.opts...)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return nil, err
		}
		p.builders = append(p.builders, b)
		return b, nil
	}
	p.mu.Unlock()

	b, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return b, nil
}

// Release returns a Builder to the pool. The send never blocks: the channel
// holds as many slots as Builders can exist.
func (p *BuilderPool) Release(b *Builder) {
	if b == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.sem <- b
	}
}

// Close releases all browser resources.
// Returns an aggregated error if several Builders fail to close.
func (p *BuilderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	builders := p.builders
	p.mu.Unlock()

	var errs []error
	for _, b := range builders {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *BuilderPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return max(MinPoolSize, min(n, MaxPoolSize))
}
