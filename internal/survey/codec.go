package survey

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidPayload = errors.New("invalid command payload")
)

// Envelope is the wire form of a Command.
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps cmd in an Envelope.
func Encode(cmd Command) (Envelope, error) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", cmd.Kind(), err)
	}
	return Envelope{Type: cmd.Kind(), Payload: raw}, nil
}

// Decode turns an Envelope back into its Command variant.
func Decode(env Envelope) (Command, error) {
	switch env.Type {
	case KindSetTitle:
		return decodeAs[SetTitle](env)
	case KindSetDescription:
		return decodeAs[SetDescription](env)
	case KindResetSurvey:
		return ResetSurvey{}, nil
	case KindAddQuestion:
		cmd, err := decodeAs[AddQuestion](env)
		if err != nil {
			return nil, err
		}
		if t := cmd.(AddQuestion).Type; t != "" && !t.Valid() {
			return nil, fmt.Errorf("%w: question type %q", ErrInvalidPayload, t)
		}
		return cmd, nil
	case KindRemoveQuestion:
		return decodeAs[RemoveQuestion](env)
	case KindUpdateQuestionLabel:
		return decodeAs[UpdateQuestionLabel](env)
	case KindUpdateQuestionType:
		cmd, err := decodeAs[UpdateQuestionType](env)
		if err != nil {
			return nil, err
		}
		if t := cmd.(UpdateQuestionType).Type; !t.Valid() {
			return nil, fmt.Errorf("%w: question type %q", ErrInvalidPayload, t)
		}
		return cmd, nil
	case KindUpdateQuestionRequired:
		return decodeAs[UpdateQuestionRequired](env)
	case KindSetActiveQuestion:
		return decodeAs[SetActiveQuestion](env)
	case KindReorderQuestions:
		return decodeAs[ReorderQuestions](env)
	case KindAddOption:
		return decodeAs[AddOption](env)
	case KindRemoveOption:
		return decodeAs[RemoveOption](env)
	case KindUpdateOptionText:
		return decodeAs[UpdateOptionText](env)
	case KindSetResponse:
		return decodeAs[SetResponse](env)
	case KindClearResponses:
		return ClearResponses{}, nil
	case KindSetPreviewMode:
		return decodeAs[SetPreviewMode](env)
	case KindStartLivePreview:
		return StartLivePreview{}, nil
	case KindSubmitLivePreview:
		return SubmitLivePreview{}, nil
	case KindExitLivePreview:
		return ExitLivePreview{}, nil
	case KindRetakeSurvey:
		return RetakeSurvey{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
}

func decodeAs[T Command](env Envelope) (Command, error) {
	var cmd T
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return cmd, nil
	}
	if err := json.Unmarshal(env.Payload, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Type, err)
	}
	return cmd, nil
}

// MarshalIndented renders v the way the JSON viewer shows it.
func MarshalIndented(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
