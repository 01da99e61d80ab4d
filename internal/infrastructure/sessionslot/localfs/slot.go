// Package localfs persists the single session identity slot as a JSON file,
// the service's stand-in for browser local storage.
package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type Slot struct {
	path string
}

func New(path string) (*Slot, error) {
	if path == "" {
		path = "./data/session.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Slot{path: path}, nil
}

func (s *Slot) Save(_ context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write identity slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace identity slot: %w", err)
	}
	return nil
}

// Load returns the stored identity. A missing file means logged out.
func (s *Slot) Load(_ context.Context) (*domain.User, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read identity slot: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false, fmt.Errorf("unmarshal identity: %w", err)
	}
	return &user, true, nil
}

func (s *Slot) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove identity slot: %w", err)
	}
	return nil
}
