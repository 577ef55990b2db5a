package survey

import (
	"sync"

	"github.com/rs/zerolog"
)

// Change describes one dispatched command. Previous and Current are shared
// with the store and must be treated as read-only.
type Change struct {
	Command  Command
	Previous Document
	Current  Document
	Applied  bool
}

// Listener is notified after every Apply, in dispatch order. Listeners must
// not call Apply on the same store.
type Listener func(Change)

// StoreOptions configures a Store.
type StoreOptions struct {
	Factory Factory
	// Initial seeds the store instead of a fresh document (session restore).
	Initial *Document
}

// Store holds one document and serializes every transition over it.
type Store struct {
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	doc        Document
	factory    Factory
	listeners  map[int]Listener
	nextID     int
	logger     zerolog.Logger
}

// NewStore creates a store holding a fresh document unless opts.Initial is set.
func NewStore(logger zerolog.Logger, opts StoreOptions) *Store {
	doc := opts.Factory.NewDocument()
	if opts.Initial != nil {
		doc = opts.Initial.Clone()
		if doc.Responses.Responses == nil {
			doc.Responses.Responses = map[string]string{}
		}
		if doc.LivePreview.Status == "" {
			doc.LivePreview.Status = StatusIdle
		}
	}
	return &Store{
		doc:       doc,
		factory:   opts.Factory,
		listeners: make(map[int]Listener),
		logger:    logger.With().Str("component", "survey_store").Logger(),
	}
}

// Apply dispatches cmd. It never fails; commands that reference unknown ids
// leave the document untouched.
func (s *Store) Apply(cmd Command) {
	_ = s.ApplyIf(cmd, nil)
}

// ApplyIf dispatches cmd only if guard accepts the current document. guard
// runs inside the dispatch critical section, so no other command can land
// between the check and the transition. A guard error is returned as is and
// the document is left unchanged. guard sees the live document read-only and
// must not call back into the store's dispatch methods.
func (s *Store) ApplyIf(cmd Command, guard func(Document) error) error {
	if cmd == nil {
		return nil
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if guard != nil {
		s.mu.RLock()
		current := s.doc
		s.mu.RUnlock()
		if err := guard(current); err != nil {
			return err
		}
	}

	s.mu.Lock()
	prev := s.doc
	next, applied := s.factory.Reduce(prev, cmd)
	s.doc = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("command", string(cmd.Kind())).
		Str("survey_id", next.Survey.ID).
		Bool("applied", applied).
		Msg("command dispatched")

	if len(listeners) == 0 {
		return nil
	}
	change := Change{Command: cmd, Previous: prev, Current: next, Applied: applied}
	for _, l := range listeners {
		l(change)
	}
	return nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}
