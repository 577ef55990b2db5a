package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

// Script is a YAML list of commands replayed against a fresh store.
type Script struct {
	Steps []Step `yaml:"commands"`
}

// Step is one command in a script.
type Step struct {
	Type    string         `yaml:"type"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// LoadScript reads a script file from disk.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes YAML script bytes.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("unmarshal script: %w", err)
	}
	return &script, nil
}

// Commands converts every step into its survey.Command, reporting the
// first step that fails to decode.
func (s *Script) Commands() ([]survey.Command, error) {
	cmds := make([]survey.Command, 0, len(s.Steps))
	for i, step := range s.Steps {
		env := survey.Envelope{Type: survey.Kind(step.Type)}
		if len(step.Payload) > 0 {
			raw, err := json.Marshal(step.Payload)
			if err != nil {
				return nil, fmt.Errorf("step %d: marshal payload: %w", i+1, err)
			}
			env.Payload = raw
		}
		cmd, err := survey.Decode(env)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// sequentialIDs yields id-1, id-2, ... so scripts can reference entities
// they create.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
