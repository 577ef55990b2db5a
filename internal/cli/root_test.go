package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

const lunchScript = `
commands:
  - type: set_title
    payload:
      text: Lunch poll
  - type: add_question
    payload:
      type: multiple_choice
  - type: update_question_label
    payload:
      questionId: id-2
      label: Where to?
  - type: update_question_required
    payload:
      questionId: id-2
      required: true
  - type: add_option
    payload:
      questionId: id-2
  - type: update_option_text
    payload:
      questionId: id-2
      optionId: id-4
      text: Tacos
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReplayPrintsDocument(t *testing.T) {
	path := writeScript(t, lunchScript)

	out, err := run(t, "replay", "--at", "2026-03-01T12:00:00Z", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"survey\""), out)

	var doc survey.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "id-1", doc.Survey.ID)
	assert.Equal(t, "Lunch poll", doc.Survey.Title)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), doc.Survey.CreatedAt)

	require.Len(t, doc.Survey.Questions, 1)
	q := doc.Survey.Questions[0]
	assert.Equal(t, "Where to?", q.Label)
	assert.True(t, q.Required)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "Tacos", q.Options[1].Text)
	require.NotNil(t, doc.ActiveQuestionID)
	assert.Equal(t, "id-2", *doc.ActiveQuestionID)
}

func TestReplayPrintsRequestedPart(t *testing.T) {
	path := writeScript(t, lunchScript)

	out, err := run(t, "replay", "--part", "responses", path)
	require.NoError(t, err)

	var responses survey.Responses
	require.NoError(t, json.Unmarshal([]byte(out), &responses))
	assert.Equal(t, "id-1", responses.SurveyID)
	assert.Empty(t, responses.Responses)

	_, err = run(t, "replay", "--part", "everything", path)
	assert.ErrorContains(t, err, "unknown part")
}

func TestCheckReportsMissingRequired(t *testing.T) {
	path := writeScript(t, lunchScript)

	out, err := run(t, "check", path)
	assert.ErrorContains(t, err, "1 required question(s) unanswered")
	assert.Equal(t, "id-2\n", out)

	answered := writeScript(t, lunchScript+`
  - type: set_response
    payload:
      questionId: id-2
      value: id-4
`)
	out, err = run(t, "check", answered)
	require.NoError(t, err)
	assert.Equal(t, "all required questions answered\n", out)
}

func TestKindsListsEveryCommand(t *testing.T) {
	out, err := run(t, "kinds")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(survey.Kinds()))
	assert.Equal(t, "set_title", lines[0])
}

func TestReplayRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown command",
			body:    "commands:\n  - type: undo\n",
			wantErr: "step 1",
		},
		{
			name:    "bad question type",
			body:    "commands:\n  - type: set_title\n  - type: add_question\n    payload:\n      type: rating\n",
			wantErr: "step 2",
		},
		{
			name:    "not yaml",
			body:    "commands: [",
			wantErr: "unmarshal script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "replay", writeScript(t, tt.body))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestReplayRejectsBadClock(t *testing.T) {
	_, err := run(t, "replay", "--at", "yesterday", writeScript(t, lunchScript))
	assert.ErrorContains(t, err, "parse --at")
}
