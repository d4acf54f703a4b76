// Package file stores character documents as YAML files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/eoschar/internal/creation"
)

// Ext is the extension of every stored document.
const Ext = ".yaml"

// ErrCharacterNotFound is returned when no document exists for an ID.
var ErrCharacterNotFound = errors.New("character not found")

// Summary identifies a stored document.
type Summary struct {
	ID   string
	Name string
}

// Store keeps one YAML document per character, named <id>.yaml.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore returns a store rooted at dir, creating the directory if needed.
//
// Precondition: dir must be non-empty.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		panic("file.NewStore: precondition violated: dir must be non-empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the file a document with id is stored in.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+Ext)
}

// Save writes doc atomically, replacing any earlier version.
func (s *Store) Save(_ context.Context, doc *creation.Document) error {
	if _, err := uuid.Parse(doc.ID); err != nil {
		return fmt.Errorf("saving character: invalid id %q: %w", doc.ID, err)
	}
	path := s.Path(doc.ID)
	if err := WriteDocument(path, doc); err != nil {
		return err
	}
	s.logger.Info("character saved", zap.String("id", doc.ID), zap.String("path", path))
	return nil
}

// Load reads the document stored for id.
//
// Postcondition: returns ErrCharacterNotFound when no document exists.
func (s *Store) Load(_ context.Context, id string) (*creation.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("loading character: invalid id %q: %w", id, err)
	}
	doc, err := ReadDocument(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCharacterNotFound
	}
	return doc, err
}

// Delete removes the document stored for id.
func (s *Store) Delete(_ context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("deleting character: invalid id %q: %w", id, err)
	}
	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCharacterNotFound
	}
	return err
}

// List returns every stored document, ordered by name then ID. Unreadable
// files are logged and skipped.
func (s *Store) List(_ context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		doc, err := ReadDocument(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable character document", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, Summary{ID: doc.ID, Name: doc.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ReadDocument decodes the YAML document at path.
func ReadDocument(path string) (*creation.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening character document: %w", err)
	}
	defer f.Close()
	var doc creation.Document
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

// WriteDocument encodes doc as YAML and writes it atomically to path.
func WriteDocument(path string, doc *creation.Document) error {
	return WriteAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding character document: %w", err)
		}
		return enc.Close()
	})
}
