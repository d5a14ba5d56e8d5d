package question

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileDoc struct {
	Questions []Question `yaml:"questions"`
}

// LoadFile reads a YAML question configuration:
//
//	questions:
//	  - id: budget
//	    text: What budget have you set aside?
//	    order_index: 1
//	    scoring_weight: 3
//	    is_active: true
func LoadFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse questions file: %w", err)
	}
	return doc.Questions, nil
}

// FileSource serves the question configuration from a YAML file, re-read on
// every call so edits apply to the next session without a restart.
type FileSource struct {
	Path string
}

func (f FileSource) ActiveQuestions(ctx context.Context) ([]Question, error) {
	return LoadFile(f.Path)
}
