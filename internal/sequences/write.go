package sequences

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteSequence writes seq to path atomically through a temp file and rename.
func WriteSequence(path string, seq *Sequence) error {
	if seq == nil {
		return fmt.Errorf("sequence is required")
	}

	content, err := yaml.Marshal(seq)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	// Reject anything LoadSequence would refuse.
	if _, err := parseSequence(content); err != nil {
		return fmt.Errorf("invalid sequence: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sequence dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".director-tmp-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
