package survey

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreQueries(t *testing.T) {
	store := newTestStore()

	_, ok := store.ActiveQuestionID()
	assert.False(t, ok)
	assert.Nil(t, store.ActiveQuestion())

	store.Apply(AddQuestion{Type: TypeMultipleChoice})
	store.Apply(UpdateQuestionLabel{QuestionID: store.Questions()[0].ID, Label: "Pick one"})

	id, ok := store.ActiveQuestionID()
	require.True(t, ok)
	active := store.ActiveQuestion()
	require.NotNil(t, active)
	assert.Equal(t, id, active.ID)
	assert.Equal(t, "Pick one", active.Label)

	store.Apply(SetPreviewMode{Enabled: true})
	assert.True(t, store.PreviewMode())
	assert.Equal(t, StatusIdle, store.LivePreview().Status)
	assert.Equal(t, store.Survey().ID, store.Responses().SurveyID)
}

func TestStoreQueriesReturnCopies(t *testing.T) {
	store := newTestStore()
	store.Apply(AddQuestion{Type: TypeMultipleChoice})

	qs := store.Questions()
	qs[0].Label = "mutated"
	qs[0].Options[0].Text = "mutated"

	resp := store.Responses()
	resp.Responses["x"] = "y"

	assert.Empty(t, store.Questions()[0].Label)
	assert.Empty(t, store.Questions()[0].Options[0].Text)
	assert.Empty(t, store.Responses().Responses)
}

func TestStoreNilCommandIsIgnored(t *testing.T) {
	store := newTestStore()
	before := store.Snapshot()
	store.Apply(nil)
	assert.Equal(t, before, store.Snapshot())
}

func TestStoreSubscribe(t *testing.T) {
	store := newTestStore()

	var changes []Change
	unsubscribe := store.Subscribe(func(c Change) { changes = append(changes, c) })

	store.Apply(SetTitle{Text: "Feedback"})
	store.Apply(RemoveQuestion{QuestionID: "missing"})
	require.Len(t, changes, 2)

	assert.Equal(t, KindSetTitle, changes[0].Command.Kind())
	assert.True(t, changes[0].Applied)
	assert.Empty(t, changes[0].Previous.Survey.Title)
	assert.Equal(t, "Feedback", changes[0].Current.Survey.Title)
	assert.False(t, changes[1].Applied)

	unsubscribe()
	store.Apply(SetTitle{Text: "Again"})
	assert.Len(t, changes, 2)
}

func TestStoreSerializesConcurrentApply(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Apply(AddQuestion{})
			_ = store.Snapshot()
		}()
	}
	wg.Wait()

	assert.Len(t, store.Questions(), 50)
}

func TestStoreApplyIfRejectsWithoutApplying(t *testing.T) {
	store := newTestStore()
	store.Apply(StartLivePreview{})

	var notified int
	store.Subscribe(func(Change) { notified++ })

	errBlocked := errors.New("blocked")
	err := store.ApplyIf(SubmitLivePreview{}, func(Document) error { return errBlocked })
	assert.ErrorIs(t, err, errBlocked)
	assert.Equal(t, StatusTaking, store.LivePreview().Status)
	assert.Zero(t, notified)

	require.NoError(t, store.ApplyIf(SubmitLivePreview{}, func(d Document) error {
		assert.Equal(t, StatusTaking, d.LivePreview.Status)
		return nil
	}))
	assert.Equal(t, StatusSubmitted, store.LivePreview().Status)
	assert.Equal(t, 1, notified)
}

func TestStoreApplyIfHoldsOffConcurrentCommands(t *testing.T) {
	store := newTestStore()
	store.Apply(AddQuestion{})
	qid := store.Questions()[0].ID
	store.Apply(StartLivePreview{})
	store.Apply(SetResponse{QuestionID: qid, Value: "yes"})

	cleared := make(chan struct{})
	err := store.ApplyIf(SubmitLivePreview{}, func(d Document) error {
		go func() {
			store.Apply(ClearResponses{})
			close(cleared)
		}()
		select {
		case <-cleared:
			t.Error("concurrent command landed between guard and apply")
		case <-time.After(50 * time.Millisecond):
		}
		if d.Responses.Responses[qid] != "yes" {
			return errors.New("answer missing")
		}
		return nil
	})
	require.NoError(t, err)

	<-cleared
	doc := store.Snapshot()
	assert.Equal(t, StatusSubmitted, doc.LivePreview.Status)
	assert.NotNil(t, doc.LivePreview.SubmittedAt)
	assert.Empty(t, doc.Responses.Responses, "clear ran after the submit")
}

func TestStoreRequiredQueries(t *testing.T) {
	store := newTestStore()
	store.Apply(AddQuestion{})
	store.Apply(AddQuestion{})
	qs := store.Questions()
	store.Apply(UpdateQuestionRequired{QuestionID: qs[0].ID, Required: true})
	store.Apply(UpdateQuestionRequired{QuestionID: qs[1].ID, Required: true})

	assert.Equal(t, []string{qs[0].ID, qs[1].ID}, store.MissingRequired())

	store.Apply(SetResponse{QuestionID: qs[0].ID, Value: "   "})
	store.Apply(SetResponse{QuestionID: qs[1].ID, Value: "ok"})
	assert.Equal(t, []string{qs[0].ID}, store.MissingRequired(), "whitespace does not count")
	assert.False(t, store.AllRequiredAnswered())

	store.Apply(SetResponse{QuestionID: qs[0].ID, Value: "fine"})
	assert.True(t, store.AllRequiredAnswered())
}

func TestNewStoreFromInitialDocument(t *testing.T) {
	f, _ := testFactory()
	doc := apply(f, f.NewDocument(), SetTitle{Text: "Restored"}, AddQuestion{})
	doc.Responses.Responses = nil

	store := NewStore(zerolog.Nop(), StoreOptions{Factory: f, Initial: &doc})
	assert.Equal(t, "Restored", store.Survey().Title)
	assert.NotNil(t, store.Responses().Responses)

	store.Apply(SetResponse{QuestionID: doc.Survey.Questions[0].ID, Value: "v"})
	assert.Equal(t, "v", store.Responses().Responses[doc.Survey.Questions[0].ID])
}

func TestDisplayFallbacks(t *testing.T) {
	f, _ := testFactory()
	doc := f.NewDocument()
	assert.Equal(t, "Untitled Survey", doc.DisplayTitle())

	doc = apply(f, doc, SetDescription{Text: "only a description"})
	assert.Empty(t, doc.DisplayTitle())

	doc = apply(f, doc, SetTitle{Text: "Named"}, AddQuestion{Type: TypeMultipleChoice})
	assert.Equal(t, "Named", doc.DisplayTitle())
	assert.Equal(t, "Untitled Question", doc.Survey.Questions[0].DisplayLabel())
	assert.Equal(t, "Untitled Option", doc.Survey.Questions[0].Options[0].DisplayText())
}
