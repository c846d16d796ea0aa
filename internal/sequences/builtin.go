package sequences

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// BuiltinSource marks sequences shipped inside the binary.
const BuiltinSource = "builtin"

// LoadBuiltinSequences parses the embedded example scripts, sorted by name.
func LoadBuiltinSequences() ([]*Sequence, error) {
	files, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list builtin sequences: %w", err)
	}

	out := make([]*Sequence, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(builtinFS, file)
		if err != nil {
			return nil, fmt.Errorf("read builtin sequence %s: %w", path.Base(file), err)
		}
		seq, err := parseSequence(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin sequence %s: %w", path.Base(file), err)
		}
		seq.Source = BuiltinSource
		out = append(out, seq)
	}

	sortByName(out)
	return out, nil
}
