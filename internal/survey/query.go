package survey

// Queries project read-only views out of the current document. Each returns
// a copy, so callers may keep results across later commands.

func (s *Store) Survey() Survey {
	return s.Snapshot().Survey
}

func (s *Store) Questions() []Question {
	return s.Snapshot().Survey.Questions
}

func (s *Store) Responses() Responses {
	return s.Snapshot().Responses
}

// ActiveQuestionID returns the cursor, or "" with ok=false when unset.
func (s *Store) ActiveQuestionID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.ActiveQuestionID == nil {
		return "", false
	}
	return *s.doc.ActiveQuestionID, true
}

// ActiveQuestion returns nil when the cursor is unset or points at a
// question that no longer exists.
func (s *Store) ActiveQuestion() *Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.doc.ActiveQuestion()
	if q == nil {
		return nil
	}
	out := q.clone()
	return &out
}

func (s *Store) PreviewMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.PreviewMode
}

func (s *Store) LivePreview() LivePreview {
	return s.Snapshot().LivePreview
}

// MissingRequired lists required questions still lacking a non-blank answer.
func (s *Store) MissingRequired() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.MissingRequired()
}

func (s *Store) AllRequiredAnswered() bool {
	return len(s.MissingRequired()) == 0
}
