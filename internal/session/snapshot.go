package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

// snapshotWriter saves a session's document off the dispatch path. Writes
// that arrive while a save is in flight collapse into the latest document,
// and at most one save per session runs at a time so snapshots land in order.
type snapshotWriter struct {
	id    uuid.UUID
	cache SnapshotCache
	fail  func(op string, id uuid.UUID, err error)

	mu      sync.Mutex
	idle    *sync.Cond
	pending *survey.Document
	running bool
}

func newSnapshotWriter(id uuid.UUID, cache SnapshotCache, fail func(string, uuid.UUID, error)) *snapshotWriter {
	w := &snapshotWriter{id: id, cache: cache, fail: fail}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// observe is a survey.Listener; it queues applied changes only.
func (w *snapshotWriter) observe(change survey.Change) {
	if !change.Applied {
		return
	}
	doc := change.Current

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = &doc
	if !w.running {
		w.running = true
		go w.drain()
	}
}

func (w *snapshotWriter) drain() {
	for {
		w.mu.Lock()
		doc := w.pending
		w.pending = nil
		if doc == nil {
			w.running = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
		if err := w.cache.Save(ctx, w.id, *doc); err != nil {
			w.fail("save", w.id, err)
		}
		cancel()
	}
}

// flush blocks until every queued document has been written.
func (w *snapshotWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.running {
		w.idle.Wait()
	}
}
