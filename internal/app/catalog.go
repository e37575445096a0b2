package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/catalogstore"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/inmemorystore"
)

// openCatalog opens the configured catalog. The returned func releases it.
func (a *App) openCatalog(ctx context.Context) (catalog.Store, func() error, error) {
	logger := ctxlog.FromContext(ctx)
	if a.config.CatalogPath != "" {
		store, err := openStore(a.config.CatalogPath, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Catalog store opened.", "path", a.config.CatalogPath)
		return store, store.Close, nil
	}

	var entries []catalog.Entry
	if a.config.CatalogSeed != "" {
		var err error
		if entries, err = catalog.LoadFile(a.config.CatalogSeed); err != nil {
			return nil, nil, err
		}
	}
	logger.Debug("In-memory catalog seeded.", "objects", len(entries))
	return inmemorystore.New(entries...), func() error { return nil }, nil
}

func openStore(path string, logger *slog.Logger) (*catalogstore.Store, error) {
	cfg := catalogstore.DefaultConfig(path)
	cfg.Logger = logger
	return catalogstore.Open(cfg)
}

// ImportCatalog loads the objects of a YAML catalog file into the store at
// storePath and returns how many were written.
func ImportCatalog(ctx context.Context, storePath, file string) (n int, err error) {
	entries, err := catalog.LoadFile(file)
	if err != nil {
		return 0, err
	}
	store, err := openStore(storePath, ctxlog.FromContext(ctx))
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing catalog store: %w", cerr)
		}
	}()

	for _, e := range entries {
		if err := store.Put(ctx, e); err != nil {
			return n, fmt.Errorf("importing %s object %q: %w", e.Collection, e.Name, err)
		}
		n++
	}
	ctxlog.FromContext(ctx).Info("Catalog imported.", "file", file, "objects", n)
	return n, nil
}

// ListCatalog returns every object of the store at storePath.
func ListCatalog(ctx context.Context, storePath string) (entries []catalog.Entry, err error) {
	store, err := openStore(storePath, ctxlog.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing catalog store: %w", cerr)
		}
	}()
	return store.Entries(ctx)
}
