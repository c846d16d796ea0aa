// Package sequences loads and saves action lists as YAML documents, so a
// script can be shared, versioned and imported into the action store.
package sequences

import "github.com/opencode-ai/director/internal/models"

// Sequence is a named, ordered list of actions.
type Sequence struct {
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Actions     []SequenceAction `yaml:"actions" json:"actions"`
	Source      string           `yaml:"-" json:"source"` // file path or "builtin"
}

// SequenceAction is one action in a sequence file.
type SequenceAction struct {
	Name       string            `yaml:"name" json:"name"`
	Type       models.ActionType `yaml:"type" json:"type"`
	Parameters string            `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}
