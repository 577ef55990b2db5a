package survey

// Kind names a command on the wire and in metrics.
type Kind string

const (
	KindSetTitle               Kind = "set_title"
	KindSetDescription         Kind = "set_description"
	KindResetSurvey            Kind = "reset_survey"
	KindAddQuestion            Kind = "add_question"
	KindRemoveQuestion         Kind = "remove_question"
	KindUpdateQuestionLabel    Kind = "update_question_label"
	KindUpdateQuestionType     Kind = "update_question_type"
	KindUpdateQuestionRequired Kind = "update_question_required"
	KindSetActiveQuestion      Kind = "set_active_question"
	KindReorderQuestions       Kind = "reorder_questions"
	KindAddOption              Kind = "add_option"
	KindRemoveOption           Kind = "remove_option"
	KindUpdateOptionText       Kind = "update_option_text"
	KindSetResponse            Kind = "set_response"
	KindClearResponses         Kind = "clear_responses"
	KindSetPreviewMode         Kind = "set_preview_mode"
	KindStartLivePreview       Kind = "start_live_preview"
	KindSubmitLivePreview      Kind = "submit_live_preview"
	KindExitLivePreview        Kind = "exit_live_preview"
	KindRetakeSurvey           Kind = "retake_survey"
)

// Command is the closed set of transitions a Store accepts. Only types in
// this package implement it.
type Command interface {
	Kind() Kind
	command()
}

type SetTitle struct {
	Text string `json:"text"`
}

type SetDescription struct {
	Text string `json:"text"`
}

type ResetSurvey struct{}

// AddQuestion appends a question; an empty Type means text.
type AddQuestion struct {
	Type QuestionType `json:"type,omitempty"`
}

type RemoveQuestion struct {
	QuestionID string `json:"questionId"`
}

type UpdateQuestionLabel struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
}

type UpdateQuestionType struct {
	QuestionID string       `json:"questionId"`
	Type       QuestionType `json:"type"`
}

type UpdateQuestionRequired struct {
	QuestionID string `json:"questionId"`
	Required   bool   `json:"required"`
}

// SetActiveQuestion moves the cursor; nil clears it.
type SetActiveQuestion struct {
	QuestionID *string `json:"questionId"`
}

type ReorderQuestions struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

type AddOption struct {
	QuestionID string `json:"questionId"`
}

type RemoveOption struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type UpdateOptionText struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
	Text       string `json:"text"`
}

type SetResponse struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type ClearResponses struct{}

type SetPreviewMode struct {
	Enabled bool `json:"enabled"`
}

type StartLivePreview struct{}

type SubmitLivePreview struct{}

type ExitLivePreview struct{}

type RetakeSurvey struct{}

func (SetTitle) Kind() Kind               { return KindSetTitle }
func (SetDescription) Kind() Kind         { return KindSetDescription }
func (ResetSurvey) Kind() Kind            { return KindResetSurvey }
func (AddQuestion) Kind() Kind            { return KindAddQuestion }
func (RemoveQuestion) Kind() Kind         { return KindRemoveQuestion }
func (UpdateQuestionLabel) Kind() Kind    { return KindUpdateQuestionLabel }
func (UpdateQuestionType) Kind() Kind     { return KindUpdateQuestionType }
func (UpdateQuestionRequired) Kind() Kind { return KindUpdateQuestionRequired }
func (SetActiveQuestion) Kind() Kind      { return KindSetActiveQuestion }
func (ReorderQuestions) Kind() Kind       { return KindReorderQuestions }
func (AddOption) Kind() Kind              { return KindAddOption }
func (RemoveOption) Kind() Kind           { return KindRemoveOption }
func (UpdateOptionText) Kind() Kind       { return KindUpdateOptionText }
func (SetResponse) Kind() Kind            { return KindSetResponse }
func (ClearResponses) Kind() Kind         { return KindClearResponses }
func (SetPreviewMode) Kind() Kind         { return KindSetPreviewMode }
func (StartLivePreview) Kind() Kind       { return KindStartLivePreview }
func (SubmitLivePreview) Kind() Kind      { return KindSubmitLivePreview }
func (ExitLivePreview) Kind() Kind        { return KindExitLivePreview }
func (RetakeSurvey) Kind() Kind           { return KindRetakeSurvey }

func (SetTitle) command()               {}
func (SetDescription) command()         {}
func (ResetSurvey) command()            {}
func (AddQuestion) command()            {}
func (RemoveQuestion) command()         {}
func (UpdateQuestionLabel) command()    {}
func (UpdateQuestionType) command()     {}
func (UpdateQuestionRequired) command() {}
func (SetActiveQuestion) command()      {}
func (ReorderQuestions) command()       {}
func (AddOption) command()              {}
func (RemoveOption) command()           {}
func (UpdateOptionText) command()       {}
func (SetResponse) command()            {}
func (ClearResponses) command()         {}
func (SetPreviewMode) command()         {}
func (StartLivePreview) command()       {}
func (SubmitLivePreview) command()      {}
func (ExitLivePreview) command()        {}
func (RetakeSurvey) command()           {}

// Kinds lists every command kind in dispatch-table order.
func Kinds() []Kind {
	return []Kind{
		KindSetTitle, KindSetDescription, KindResetSurvey,
		KindAddQuestion, KindRemoveQuestion, KindUpdateQuestionLabel,
		KindUpdateQuestionType, KindUpdateQuestionRequired, KindSetActiveQuestion,
		KindReorderQuestions, KindAddOption, KindRemoveOption, KindUpdateOptionText,
		KindSetResponse, KindClearResponses, KindSetPreviewMode,
		KindStartLivePreview, KindSubmitLivePreview, KindExitLivePreview, KindRetakeSurvey,
	}
}
