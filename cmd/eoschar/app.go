package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	embedded "github.com/cory-johannsen/eoschar/content"
	"github.com/cory-johannsen/eoschar/internal/config"
	"github.com/cory-johannsen/eoschar/internal/creation"
	"github.com/cory-johannsen/eoschar/internal/game/choice"
	"github.com/cory-johannsen/eoschar/internal/game/content"
	"github.com/cory-johannsen/eoschar/internal/observability"
	"github.com/cory-johannsen/eoschar/internal/scripting"
	"github.com/cory-johannsen/eoschar/internal/storage/file"
	"github.com/cory-johannsen/eoschar/internal/storage/postgres"
)

// storeEntry is one listed character, whatever the backend.
type storeEntry struct {
	ID   string
	Name string
}

// characterStore is the persistence boundary shared by the file and postgres backends.
type characterStore interface {
	Save(ctx context.Context, doc *creation.Document) error
	Load(ctx context.Context, id string) (*creation.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]storeEntry, error)
}

type fileStore struct{ *file.Store }

func (s fileStore) List(ctx context.Context) ([]storeEntry, error) {
	summaries, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]storeEntry, len(summaries))
	for i, sm := range summaries {
		out[i] = storeEntry{ID: sm.ID, Name: sm.Name}
	}
	return out, nil
}

type postgresStore struct{ *postgres.CharacterRepository }

func (s postgresStore) List(ctx context.Context) ([]storeEntry, error) {
	summaries, err := s.CharacterRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]storeEntry, len(summaries))
	for i, sm := range summaries {
		out[i] = storeEntry{ID: sm.ID, Name: sm.Name}
	}
	return out, nil
}

// app holds everything a subcommand needs.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	catalog *content.Catalog
	walker  *creation.Walker
	store   characterStore
	closers []func()
}

// newApp loads configuration, content and the storage backend.
//
// Postcondition: on success the caller must call close.
func newApp(ctx context.Context) (*app, error) {
	start := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	var provider content.Provider = content.FSProvider{FS: embedded.FS}
	if cfg.Content.Dir != "" {
		provider = content.DirProvider(cfg.Content.Dir)
	}
	a.catalog, err = content.Load(provider)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("loading content: %w", err)
	}

	ev := scripting.NewEvaluator(cfg.Content.ScriptInstructionLimit, logger)
	forest, err := choice.BuildForest(a.catalog, ev, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("building choice forest: %w", err)
	}
	a.walker = creation.NewWalker(a.catalog, forest, logger)

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	logger.Debug("eoschar ready",
		zap.String("content", contentSource(cfg.Content.Dir)),
		zap.String("storage", cfg.Storage.Backend),
		zap.Int("trees", len(forest)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			return fmt.Errorf("database health check: %w", err)
		}
		a.store = postgresStore{pool.Characters()}
	default:
		st, err := file.NewStore(a.cfg.Storage.Dir, a.logger)
		if err != nil {
			return fmt.Errorf("opening character directory: %w", err)
		}
		a.store = fileStore{st}
	}
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// document resolves ref as a document file path, falling back to a stored ID.
func (a *app) document(ctx context.Context, ref string) (*creation.Document, error) {
	if _, err := os.Stat(ref); err == nil {
		return file.ReadDocument(ref)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", ref, err)
	}
	doc, err := a.store.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", ref, err)
	}
	return doc, nil
}

func contentSource(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
