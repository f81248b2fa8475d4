package questions

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"millionaire-service/internal/domain"
)

//go:embed default_bank.yaml
var defaultBank []byte

type bankFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// ParseBank reads a YAML question bank and validates every entry.
func ParseBank(r io.Reader) ([]domain.Question, error) {
	var file bankFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Questions))
	for i, q := range file.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: %w: missing id", i+1, domain.ErrMalformedQuestion)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("question %s: %w: duplicate id", q.ID, domain.ErrMalformedQuestion)
		}
		seen[q.ID] = struct{}{}
		if !validDifficulty(q.Difficulty) {
			return nil, fmt.Errorf("question %s: %w: difficulty %q", q.ID, domain.ErrMalformedQuestion, q.Difficulty)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
	}
	return file.Questions, nil
}

// DefaultBank is the question bank compiled into the binary.
func DefaultBank() []domain.Question {
	qs, err := ParseBank(bytes.NewReader(defaultBank))
	if err != nil {
		panic(fmt.Sprintf("embedded question bank: %v", err))
	}
	return qs
}

func validDifficulty(d domain.Difficulty) bool {
	for _, known := range domain.Difficulties {
		if d == known {
			return true
		}
	}
	return false
}
