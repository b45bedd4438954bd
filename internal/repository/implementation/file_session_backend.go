package implementation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

// FileSessionBackend keeps all sessions in one JSON document, the
// chat_memory.json layout: {"<sender>": {<session fields>}, ...}
type FileSessionBackend struct {
	path string
}

func NewFileSessionBackend(path string) contract.SessionBackend {
	return &FileSessionBackend{path: filepath.Clean(path)}
}

// Load reads the document. A missing file is an empty store; an empty or
// undecodable one is reported as contract.ErrCorruptState.
func (b *FileSessionBackend) Load(_ context.Context) (map[string]*store.Session, error) {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*store.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	sessions := map[string]*store.Session{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", b.path, contract.ErrCorruptState)
	}
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", b.path, err, contract.ErrCorruptState)
	}
	for k, s := range sessions {
		if s == nil {
			sessions[k] = &store.Session{}
		}
	}
	return sessions, nil
}

// Save merges sessions into the document on disk, then writes the result
// to a temporary file in the same directory and renames it over the old
// one, so a crash mid-write never leaves a truncated file. A corrupt
// document is replaced.
func (b *FileSessionBackend) Save(ctx context.Context, sessions map[string]*store.Session) error {
	doc, err := b.Load(ctx)
	switch {
	case errors.Is(err, contract.ErrCorruptState):
		doc = map[string]*store.Session{}
	case err != nil:
		return err
	}
	for sender, s := range sessions {
		doc[sender] = s
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}

func (b *FileSessionBackend) Close() error { return nil }
