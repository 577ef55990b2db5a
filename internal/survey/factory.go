package survey

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Factory builds fresh entities. Zero-value fields fall back to the wall
// clock and NewIdentifier.
type Factory struct {
	Now   func() time.Time
	NewID func() string
}

// NewIdentifier returns "<unix millis>-<random suffix>". The suffix comes
// from a v4 UUID so back-to-back calls within one millisecond do not collide.
func NewIdentifier() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}

func (f Factory) now() time.Time {
	if f.Now != nil {
		return f.Now().UTC().Round(0)
	}
	return time.Now().UTC().Round(0)
}

func (f Factory) id() string {
	if f.NewID != nil {
		return f.NewID()
	}
	return NewIdentifier()
}

// NewSurvey returns an empty survey with both timestamps set to now.
func (f Factory) NewSurvey() Survey {
	now := f.now()
	desc := ""
	return Survey{
		ID:          f.id(),
		Description: &desc,
		Questions:   []Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewQuestion defaults to a text question when typ is empty or unknown.
func (f Factory) NewQuestion(typ QuestionType) Question {
	if !typ.Valid() {
		typ = TypeText
	}
	q := Question{ID: f.id(), Type: typ}
	if typ == TypeMultipleChoice {
		q.Options = []Option{f.NewOption()}
	}
	return q
}

func (f Factory) NewOption() Option {
	return Option{ID: f.id()}
}

// NewDocument is the session-start state: empty survey, idle live preview.
func (f Factory) NewDocument() Document {
	s := f.NewSurvey()
	return Document{
		Survey:      s,
		Responses:   emptyResponses(s.ID),
		LivePreview: LivePreview{Status: StatusIdle},
	}
}

func emptyResponses(surveyID string) Responses {
	return Responses{SurveyID: surveyID, Responses: map[string]string{}}
}
