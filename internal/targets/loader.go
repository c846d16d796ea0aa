// Package targets reads the list of target ids a replay iterates over.
package targets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ErrSourceNotFound is returned when the target file does not exist.
var ErrSourceNotFound = errors.New("target source not found")

const utf8BOM = "\ufeff"

// Load reads one target id per CSV record, taking the first field.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("target path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("open targets %s: %w", path, err)
	}
	defer f.Close()

	ids, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse targets %s: %w", path, err)
	}
	return ids, nil
}

// Parse reads target ids from r.
func Parse(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	ids := make([]string, 0)
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}

		id := record[0]
		if line == 0 {
			id = strings.TrimPrefix(id, utf8BOM)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// LoadOrEmpty never fails: errors are logged and an empty list is returned,
// which callers treat as nothing to do.
func LoadOrEmpty(path string, logger zerolog.Logger) []string {
	ids, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			logger.Error().Str("path", path).Msg("target file not found")
		} else {
			logger.Error().Err(err).Str("path", path).Msg("failed to load targets")
		}
		return []string{}
	}

	logger.Debug().Str("path", path).Int("count", len(ids)).Msg("targets loaded")
	return ids
}
