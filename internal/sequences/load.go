package sequences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencode-ai/director/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadSequence reads a single sequence from disk.
func LoadSequence(path string) (*Sequence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sequence path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", path, err)
	}

	seq, err := parseSequence(data)
	if err != nil {
		return nil, fmt.Errorf("parse sequence %s: %w", path, err)
	}
	seq.Source = path
	return seq, nil
}

// LoadSequencesFromDir loads every .yaml and .yml file in dir, sorted by
// sequence name. A missing directory yields an empty list.
func LoadSequencesFromDir(dir string) ([]*Sequence, error) {
	var out []*Sequence
	if strings.TrimSpace(dir) == "" {
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sequences dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}
		if entry.IsDir() {
			continue
		}
		seq, err := LoadSequence(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, seq)
	}

	sortByName(out)
	return out, nil
}

func parseSequence(data []byte) (*Sequence, error) {
	var seq Sequence
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	seq.Name = strings.TrimSpace(seq.Name)
	if seq.Name == "" {
		return nil, fmt.Errorf("sequence name is required")
	}
	seq.Description = strings.TrimSpace(seq.Description)

	if len(seq.Actions) == 0 {
		return nil, fmt.Errorf("sequence actions are required")
	}

	for i := range seq.Actions {
		if err := normalizeAction(&seq.Actions[i]); err != nil {
			return nil, fmt.Errorf("sequence action %d: %w", i+1, err)
		}
	}

	return &seq, nil
}

func normalizeAction(action *SequenceAction) error {
	action.Type = models.ActionType(strings.ToLower(strings.TrimSpace(string(action.Type))))
	action.Name = strings.TrimSpace(action.Name)
	action.Parameters = models.NormalizeParameters(action.Parameters)

	if action.Name == "" {
		action.Name = string(action.Type)
	}
	if !action.Type.Valid() {
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	return nil
}
