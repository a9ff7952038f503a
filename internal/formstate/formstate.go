// Package formstate persists the CLI's forms between invocations, so that
// consecutive commands behave like clicks on one page.
package formstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shopcart-console/internal/form"
)

type state struct {
	Forms map[string]form.Record `json:"forms"`
}

// File is one form per resource, keyed by collection name.
type File struct {
	path  string
	state state
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".shopcart", "form.json"), nil
}

// Load reads the state file at path. A missing file is an empty state.
func Load(path string) (*File, error) {
	f := &File{path: path, state: state{Forms: map[string]form.Record{}}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &f.state); err != nil {
		return nil, fmt.Errorf("read form state %s: %w", path, err)
	}
	if f.state.Forms == nil {
		f.state.Forms = map[string]form.Record{}
	}
	return f, nil
}

func (f *File) Path() string {
	return f.path
}

// Form returns a copy of the saved form for resource, empty when none.
func (f *File) Form(resource string) form.Record {
	rec, ok := f.state.Forms[resource]
	if !ok {
		return form.Record{}
	}
	return rec.Clone()
}

func (f *File) Put(resource string, rec form.Record) {
	if rec.Empty() {
		delete(f.state.Forms, resource)
		return
	}
	f.state.Forms[resource] = rec.Clone()
}

func (f *File) Save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}
