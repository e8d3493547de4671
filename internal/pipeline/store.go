package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datamend/datamend-cli/internal/utils"
)

// Store persists pipeline definitions (steps, metadata, and the
// retained execution history) as one JSON file per pipeline.
type Store struct {
	dir string
}

// NewStore opens a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create pipelines dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the full pipeline definition atomically. Step order and
// parameter values round-trip exactly.
func (s *Store) Save(p *Pipeline) error {
	b, err := utils.PrettyJSON(p)
	if err != nil {
		return fmt.Errorf("marshal pipeline %q: %w", p.Name, err)
	}
	if err := utils.SafeWriteFile(s.path(p.ID), b); err != nil {
		return fmt.Errorf("save pipeline %q: %w", p.Name, err)
	}
	return nil
}

// Load reads one pipeline by id.
func (s *Store) Load(id string) (*Pipeline, error) {
	return LoadFile(s.path(id))
}

// LoadAll reads every pipeline in the store.
func (s *Store) LoadAll() ([]*Pipeline, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read pipelines dir: %w", err)
	}
	var out []*Pipeline
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := LoadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete removes a pipeline's file.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	return nil
}

// SaveFile writes a pipeline definition to an arbitrary path.
func SaveFile(p *Pipeline, path string) error {
	b, err := utils.PrettyJSON(p)
	if err != nil {
		return fmt.Errorf("marshal pipeline %q: %w", p.Name, err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save pipeline %q: %w", p.Name, err)
	}
	return nil
}

// LoadFile reads a pipeline definition from an arbitrary path.
func LoadFile(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	var p Pipeline
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("parse pipeline: missing pipeline_id")
	}
	return &p, nil
}
