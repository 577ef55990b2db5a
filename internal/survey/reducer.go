package survey

// Reduce applies cmd to doc and returns the next document. doc is never
// modified. The bool reports whether cmd had any effect; unknown ids,
// out-of-range indices and live-preview commands issued off the state
// machine's edges are no-ops.
func (f Factory) Reduce(doc Document, cmd Command) (Document, bool) {
	next := doc.Clone()
	if next.Responses.Responses == nil {
		next.Responses.Responses = map[string]string{}
	}
	if !f.reduce(&next, cmd) {
		return doc, false
	}
	return next, true
}

func (f Factory) reduce(d *Document, cmd Command) bool {
	switch c := cmd.(type) {
	case SetTitle:
		d.Survey.Title = c.Text
		f.touch(d)
	case SetDescription:
		text := c.Text
		d.Survey.Description = &text
		f.touch(d)
	case ResetSurvey:
		d.Survey = f.NewSurvey()
		d.Responses = emptyResponses(d.Survey.ID)
		d.ActiveQuestionID = nil
	case AddQuestion:
		q := f.NewQuestion(c.Type)
		d.Survey.Questions = append(d.Survey.Questions, q)
		id := q.ID
		d.ActiveQuestionID = &id
		f.touch(d)
	case RemoveQuestion:
		return f.removeQuestion(d, c.QuestionID)
	case UpdateQuestionLabel:
		q := d.QuestionByID(c.QuestionID)
		if q == nil {
			return false
		}
		q.Label = c.Label
		f.touch(d)
	case UpdateQuestionType:
		return f.updateQuestionType(d, c)
	case UpdateQuestionRequired:
		q := d.QuestionByID(c.QuestionID)
		if q == nil {
			return false
		}
		q.Required = c.Required
		f.touch(d)
	case SetActiveQuestion:
		d.ActiveQuestionID = cloneString(c.QuestionID)
	case ReorderQuestions:
		return f.reorder(d, c.FromIndex, c.ToIndex)
	case AddOption:
		q := d.QuestionByID(c.QuestionID)
		if q == nil || q.Type != TypeMultipleChoice {
			return false
		}
		q.Options = append(q.Options, f.NewOption())
		f.touch(d)
	case RemoveOption:
		return f.removeOption(d, c)
	case UpdateOptionText:
		q := d.QuestionByID(c.QuestionID)
		if q == nil {
			return false
		}
		for i := range q.Options {
			if q.Options[i].ID == c.OptionID {
				q.Options[i].Text = c.Text
				f.touch(d)
				return true
			}
		}
		return false
	case SetResponse:
		d.Responses.SurveyID = d.Survey.ID
		d.Responses.Responses[c.QuestionID] = c.Value
	case ClearResponses:
		d.Responses = emptyResponses(d.Survey.ID)
	case SetPreviewMode:
		d.PreviewMode = c.Enabled
	case StartLivePreview:
		if d.LivePreview.Status != StatusIdle {
			return false
		}
		f.beginTaking(d)
	case SubmitLivePreview:
		if d.LivePreview.Status != StatusTaking {
			return false
		}
		now := f.now()
		at := now
		d.LivePreview = LivePreview{Status: StatusSubmitted, SubmittedAt: &now}
		d.Responses.SubmittedAt = &at
	case ExitLivePreview:
		if d.LivePreview.Status == StatusIdle {
			return false
		}
		d.LivePreview = LivePreview{Status: StatusIdle}
	case RetakeSurvey:
		if d.LivePreview.Status != StatusSubmitted {
			return false
		}
		f.beginTaking(d)
	default:
		return false
	}
	return true
}

func (f Factory) beginTaking(d *Document) {
	d.LivePreview = LivePreview{Status: StatusTaking}
	d.Responses = emptyResponses(d.Survey.ID)
}

func (f Factory) removeQuestion(d *Document, id string) bool {
	idx := -1
	for i, q := range d.Survey.Questions {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	d.Survey.Questions = append(d.Survey.Questions[:idx], d.Survey.Questions[idx+1:]...)
	if d.ActiveQuestionID != nil && *d.ActiveQuestionID == id {
		d.ActiveQuestionID = nil
		if len(d.Survey.Questions) > 0 {
			first := d.Survey.Questions[0].ID
			d.ActiveQuestionID = &first
		}
	}
	delete(d.Responses.Responses, id)
	f.touch(d)
	return true
}

func (f Factory) updateQuestionType(d *Document, c UpdateQuestionType) bool {
	q := d.QuestionByID(c.QuestionID)
	if q == nil || !c.Type.Valid() {
		return false
	}
	prev := q.Type
	q.Type = c.Type
	switch {
	case c.Type == TypeMultipleChoice && prev != TypeMultipleChoice:
		q.Options = []Option{f.NewOption()}
	case c.Type != TypeMultipleChoice && prev == TypeMultipleChoice:
		q.Options = nil
		delete(d.Responses.Responses, q.ID)
	}
	f.touch(d)
	return true
}

// reorder rejects out-of-range indices rather than clamping them.
func (f Factory) reorder(d *Document, from, to int) bool {
	n := len(d.Survey.Questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	qs := d.Survey.Questions
	moved := qs[from]
	qs = append(qs[:from], qs[from+1:]...)
	qs = append(qs[:to], append([]Question{moved}, qs[to:]...)...)
	d.Survey.Questions = qs
	f.touch(d)
	return true
}

func (f Factory) removeOption(d *Document, c RemoveOption) bool {
	q := d.QuestionByID(c.QuestionID)
	if q == nil || q.Options == nil {
		return false
	}
	kept := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if o.ID != c.OptionID {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(q.Options) {
		return false
	}
	q.Options = kept
	if d.Responses.Responses[q.ID] == c.OptionID {
		delete(d.Responses.Responses, q.ID)
	}
	f.touch(d)
	return true
}

// touch refreshes updatedAt without ever moving it backwards.
func (f Factory) touch(d *Document) {
	now := f.now()
	if now.Before(d.Survey.UpdatedAt) {
		now = d.Survey.UpdatedAt
	}
	d.Survey.UpdatedAt = now
}
