package cacheimpl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
)

var _ cache.Store = (*Memory)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory keeps entries in process. Expired entries are invisible to Get
// immediately and are reclaimed by Sweep.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time

	logger logger.Logger
}

func NewMemory(log logger.Logger) *Memory {
	return &Memory{
		items:  make(map[string]entry),
		now:    time.Now,
		logger: log.WithComponent("MemoryStore"),
	}
}

// NewMemoryStore creates the store and schedules its sweeper.
func NewMemoryStore(opts Opts) (*Memory, error) {
	store := NewMemory(opts.Logger)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(opts.Config.Store.SweepInterval),
		gocron.NewTask(func() {
			if n := store.Sweep(); n > 0 {
				store.logger.Debug("Swept expired entries", "count", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sweeper: %w", err)
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			scheduler.Start()
			store.logger.Info("In-memory store started", "sweep_interval", opts.Config.Store.SweepInterval.String())
			return nil
		},
		OnStop: func(context.Context) error {
			return scheduler.Shutdown()
		},
	})

	return store, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.now()) {
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
