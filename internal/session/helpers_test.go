package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

type memoryCache struct {
	mu      sync.Mutex
	store   map[uuid.UUID][]byte
	saves   int
	failing bool
	// gate, when set, holds every Save until a value is received
	gate chan struct{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[uuid.UUID][]byte{}}
}

func (c *memoryCache) Save(_ context.Context, id uuid.UUID, doc survey.Document) error {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("cache down")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c.store[id] = data
	c.saves++
	return nil
}

func (c *memoryCache) Load(_ context.Context, id uuid.UUID) (*survey.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, errors.New("cache down")
	}
	data, ok := c.store[id]
	if !ok {
		return nil, nil
	}
	var doc survey.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *memoryCache) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return false, errors.New("cache down")
	}
	_, ok := c.store[id]
	delete(c.store, id)
	return ok, nil
}

func (c *memoryCache) setFailing(v bool) {
	c.mu.Lock()
	c.failing = v
	c.mu.Unlock()
}

func (c *memoryCache) setGate(gate chan struct{}) {
	c.mu.Lock()
	c.gate = gate
	c.mu.Unlock()
}

func (c *memoryCache) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeClock is safe to read from handler goroutines while a test advances it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (s *Session) attachedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}
