package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadError reports a persisted index that is missing, corrupt, or was built
// with a different embedding model than the current configuration.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("index: load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type payload struct {
	Model     string  `json:"model"`
	Dimension int     `json:"dimension"`
	Entries   []Entry `json:"entries"`
}

// Save serializes the index to path. The artifact is written to a temporary
// file and renamed into place, so readers never observe a partial index.
func (ix *Index) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("index: save: ensure directory %q: %w", dir, err)
	}
	data, err := json.Marshal(payload{Model: ix.model, Dimension: ix.dimension, Entries: ix.entries})
	if err != nil {
		return fmt.Errorf("index: save: encode: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("index: save: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("index: save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: save: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("index: save: replace %q: %w", path, err)
	}
	return nil
}

// Load deserializes an index from path and validates it against the embedding
// model the process is configured with. Any defect is a *LoadError: there is
// no serving document-grounded queries without a sound index.
func Load(path, wantModel string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("corrupt artifact: %w", err)}
	}
	if p.Model != wantModel {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("built with embedding model %q, configured model is %q", p.Model, wantModel)}
	}
	if p.Dimension <= 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("invalid dimension %d", p.Dimension)}
	}
	for i := range p.Entries {
		if len(p.Entries[i].Vector) != p.Dimension {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("entry %d has dimension %d, want %d", i, len(p.Entries[i].Vector), p.Dimension)}
		}
	}
	return &Index{model: p.Model, dimension: p.Dimension, entries: p.Entries}, nil
}
