package sequences

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SequenceSearchPaths returns the directories scanned for named sequences,
// highest precedence first: the project, then the user config directory.
func SequenceSearchPaths(projectDir string) []string {
	var paths []string
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".director", "sequences"))
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		paths = append(paths, filepath.Join(dir, "director", "sequences"))
	}
	return paths
}

// LoadSequencesFromSearchPaths returns every visible sequence. When two share
// a name the one found first wins, and built-ins come last.
func LoadSequencesFromSearchPaths(projectDir string) ([]*Sequence, error) {
	seen := make(map[string]bool)
	var resolved []*Sequence
	add := func(found []*Sequence) {
		for _, seq := range found {
			if seen[seq.Name] {
				continue
			}
			seen[seq.Name] = true
			resolved = append(resolved, seq)
		}
	}

	for _, dir := range SequenceSearchPaths(projectDir) {
		found, err := LoadSequencesFromDir(dir)
		if err != nil {
			return nil, err
		}
		add(found)
	}

	builtins, err := LoadBuiltinSequences()
	if err != nil {
		return nil, err
	}
	add(builtins)
	return resolved, nil
}

// FindSequence loads name directly when it is an existing file, and otherwise
// looks it up by sequence name.
func FindSequence(name, projectDir string) (*Sequence, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return LoadSequence(name)
	}

	all, err := LoadSequencesFromSearchPaths(projectDir)
	if err != nil {
		return nil, err
	}
	for _, seq := range all {
		if seq.Name == name {
			return seq, nil
		}
	}
	return nil, fmt.Errorf("sequence %q not found", name)
}

func sortByName(list []*Sequence) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}
