package survey

import (
	"encoding/json"
	"strings"
	"time"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeMultipleChoice QuestionType = "multiple_choice"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t == TypeText || t == TypeMultipleChoice
}

// LivePreviewStatus lifecycle states.
type LivePreviewStatus string

const (
	StatusIdle      LivePreviewStatus = "idle"
	StatusTaking    LivePreviewStatus = "taking"
	StatusSubmitted LivePreviewStatus = "submitted"
)

// Option is one selectable choice of a multiple-choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DisplayText returns the option text or a placeholder when empty.
func (o Option) DisplayText() string {
	if o.Text == "" {
		return "Untitled Option"
	}
	return o.Text
}

// Question is a single prompt. Options is non-nil iff Type is multiple_choice.
type Question struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options,omitempty"`
}

// DisplayLabel returns the label or a placeholder when empty.
func (q Question) DisplayLabel() string {
	if q.Label == "" {
		return "Untitled Question"
	}
	return q.Label
}

type questionJSON struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  *[]Option    `json:"options,omitempty"`
}

// MarshalJSON keeps an empty option list on the wire for multiple-choice
// questions so the presence of options survives a round trip.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{ID: q.ID, Label: q.Label, Type: q.Type, Required: q.Required}
	if q.Options != nil {
		opts := q.Options
		out.Options = &opts
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*q = Question{ID: in.ID, Label: in.Label, Type: in.Type, Required: in.Required}
	if in.Options != nil {
		q.Options = append(make([]Option, 0, len(*in.Options)), *in.Options...)
	}
	return nil
}

// Survey is the document being authored.
type Survey struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Responses holds answers keyed by question id. A value is free text or the
// id of the selected option.
type Responses struct {
	SurveyID    string            `json:"surveyId"`
	Responses   map[string]string `json:"responses"`
	SubmittedAt *time.Time        `json:"submittedAt,omitempty"`
}

// LivePreview governs the simulated take-the-survey overlay.
type LivePreview struct {
	Status      LivePreviewStatus `json:"status"`
	SubmittedAt *time.Time        `json:"submittedAt"`
}

// Document is the full state held by a Store.
type Document struct {
	Survey           Survey      `json:"survey"`
	Responses        Responses   `json:"responses"`
	ActiveQuestionID *string     `json:"activeQuestionId"`
	PreviewMode      bool        `json:"previewMode"`
	LivePreview      LivePreview `json:"livePreview"`
}

// Clone returns a deep copy sharing no mutable state with d.
func (d Document) Clone() Document {
	out := d
	out.Survey.Description = cloneString(d.Survey.Description)
	if d.Survey.Questions != nil {
		out.Survey.Questions = make([]Question, len(d.Survey.Questions))
		for i, q := range d.Survey.Questions {
			out.Survey.Questions[i] = q.clone()
		}
	}
	if d.Responses.Responses != nil {
		out.Responses.Responses = make(map[string]string, len(d.Responses.Responses))
		for k, v := range d.Responses.Responses {
			out.Responses.Responses[k] = v
		}
	}
	out.Responses.SubmittedAt = cloneTime(d.Responses.SubmittedAt)
	out.ActiveQuestionID = cloneString(d.ActiveQuestionID)
	out.LivePreview.SubmittedAt = cloneTime(d.LivePreview.SubmittedAt)
	return out
}

func (q Question) clone() Question {
	if q.Options != nil {
		q.Options = append(make([]Option, 0, len(q.Options)), q.Options...)
	}
	return q
}

// QuestionByID returns the question with id, or nil.
func (d Document) QuestionByID(id string) *Question {
	for i := range d.Survey.Questions {
		if d.Survey.Questions[i].ID == id {
			return &d.Survey.Questions[i]
		}
	}
	return nil
}

// ActiveQuestion resolves the cursor; nil when unset or stale.
func (d Document) ActiveQuestion() *Question {
	if d.ActiveQuestionID == nil {
		return nil
	}
	return d.QuestionByID(*d.ActiveQuestionID)
}

// MissingRequired lists required questions with no non-blank response, in
// display order.
func (d Document) MissingRequired() []string {
	var missing []string
	for _, q := range d.Survey.Questions {
		if !q.Required {
			continue
		}
		if strings.TrimSpace(d.Responses.Responses[q.ID]) == "" {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// DisplayTitle returns the title, or a placeholder when the survey has
// neither a title nor a description.
func (d Document) DisplayTitle() string {
	if d.Survey.Title != "" {
		return d.Survey.Title
	}
	if d.Survey.Description == nil || *d.Survey.Description == "" {
		return "Untitled Survey"
	}
	return ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
