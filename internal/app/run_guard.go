package app

import (
	"context"
	"sync/atomic"
)

// RunGuard admits at most one reschedule run at a time.
type RunGuard interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// MemoryGuard is a process-lifetime RunGuard.
type MemoryGuard struct {
	running atomic.Bool
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{}
}

func (g *MemoryGuard) TryAcquire(context.Context) (bool, error) {
	return g.running.CompareAndSwap(false, true), nil
}

func (g *MemoryGuard) Release(context.Context) error {
	g.running.Store(false)
	return nil
}
