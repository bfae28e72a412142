package competitiondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// FileDefinitionStore keeps one JSON document per competition type under a
// directory. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated document behind.
type FileDefinitionStore struct {
	dir string
}

var _ DefinitionStore = (*FileDefinitionStore)(nil)

// NewFileDefinitionStore creates the store directory if needed.
func NewFileDefinitionStore(dir string) (*FileDefinitionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create definition dir: %w", err)
	}
	return &FileDefinitionStore{dir: dir}, nil
}

func (s *FileDefinitionStore) path(compType competitiontypes.CompetitionType) string {
	return filepath.Join(s.dir, fmt.Sprintf("competition_%s.json", compType))
}

// Save writes the definition document for its type.
func (s *FileDefinitionStore) Save(def *competitiontypes.Definition) error {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}
	tmp := s.path(def.Type) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition: %w", err)
	}
	if err := os.Rename(tmp, s.path(def.Type)); err != nil {
		return fmt.Errorf("failed to commit definition: %w", err)
	}
	return nil
}

// LoadAll reads every definition document in the directory.
func (s *FileDefinitionStore) LoadAll() ([]competitiontypes.Definition, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition dir: %w", err)
	}

	var defs []competitiontypes.Definition
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "competition_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read definition %s: %w", name, err)
		}
		var def competitiontypes.Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse definition %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Delete removes the definition document for a type. Missing documents are
// not an error.
func (s *FileDefinitionStore) Delete(compType competitiontypes.CompetitionType) error {
	if err := os.Remove(s.path(compType)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete definition: %w", err)
	}
	return nil
}
