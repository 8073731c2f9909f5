package lock

import (
	"context"
	"sync"
)

// LocalSemaphore — in-process binary semaphore; a single-slot channel holds
// the token. Backs tests and single-node runs without redis.
type LocalSemaphore struct {
	tokens chan struct{}
}

func NewLocalSemaphore() *LocalSemaphore {
	s := &LocalSemaphore{tokens: make(chan struct{}, 1)}
	s.tokens <- struct{}{}
	return s
}

func (s *LocalSemaphore) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-s.tokens:
		var once sync.Once
		return func() {
			once.Do(func() { s.tokens <- struct{}{} })
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LocalProvider keeps one join semaphore per room name.
type LocalProvider struct {
	selection *LocalSemaphore

	mu    sync.Mutex
	joins map[string]*LocalSemaphore
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{
		selection: NewLocalSemaphore(),
		joins:     make(map[string]*LocalSemaphore),
	}
}

func (p *LocalProvider) Selection() Semaphore {
	return p.selection
}

func (p *LocalProvider) Join(room string) Semaphore {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.joins[room]
	if !ok {
		s = NewLocalSemaphore()
		p.joins[room] = s
	}
	return s
}
