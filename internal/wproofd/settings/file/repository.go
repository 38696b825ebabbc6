// Package file stores overlay settings in a YAML document on disk
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

type repository struct {
	path string
	mu   sync.Mutex
}

var _ settings.Repository = (*repository)(nil)

// NewRepository creates a repository reading and writing path
func NewRepository(path string) settings.Repository {
	return &repository{path: path}
}

func (r *repository) Load(ctx context.Context) (*settings.Settings, error) {
	const op = "FileRepository.Load"

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, errors.NewError("NOT_FOUND", "settings file does not exist", op, errors.ErrNotFound)
	}
	if err != nil {
		return nil, errors.NewError("UNAVAILABLE", "failed to read settings file", op, fmt.Errorf("%w: %v", errors.ErrUnavailable, err))
	}

	var doc v1alpha1.Settings
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewError("INVALID_INPUT", fmt.Sprintf("failed to parse settings file: %v", err), op, errors.ErrInvalidInput)
	}

	s := settings.FromAPI(doc)
	return &s, nil
}

// Save writes the document to a temporary file and renames it into place
func (r *repository) Save(ctx context.Context, s settings.Settings) error {
	const op = "FileRepository.Save"

	data, err := yaml.Marshal(settings.ToAPI(s))
	if err != nil {
		return errors.NewError("INTERNAL", "failed to encode settings", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.NewError("INTERNAL", "failed to create settings directory", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".settings-*.yaml")
	if err != nil {
		return errors.NewError("INTERNAL", "failed to create settings file", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewError("INTERNAL", "failed to write settings file", op, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewError("INTERNAL", "failed to write settings file", op, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return errors.NewError("INTERNAL", "failed to replace settings file", op, err)
	}
	return nil
}
