package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/config"
	bleveindex "github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/index/bleve"
	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/index/elasticsearch"
	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-docsearch/internal/connectors/dropbox"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-docsearch/internal/core/services"
	"github.com/custodia-labs/sercha-docsearch/internal/extractors"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

const schemaTimeout = 30 * time.Second

// build opens the single search index and run store for this process and
// wires the services around them.
func build(ctx context.Context, cfg *config.Config, req cli.Requirements) (*cli.Services, error) {
	if err := cfg.ValidateIndex(); err != nil {
		return nil, err
	}
	if req.Source {
		if err := cfg.ValidateSource(); err != nil {
			return nil, err
		}
	}

	dataDir, err := resolveDataDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	index, err := openIndex(cfg, dataDir)
	if err != nil {
		return nil, err
	}

	schemaCtx, cancel := context.WithTimeout(ctx, schemaTimeout)
	err = index.EnsureSchema(schemaCtx)
	cancel()
	if err != nil {
		if req.Source {
			index.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Warn("ensure schema: %v", err)
	}

	runs, closeRuns := openRunStore(dataDir)

	svc := &cli.Services{
		Search: services.NewSearchService(index, services.NewURLBuilder(cfg.URL.Base, cfg.URL.Suffix)),
		Runs:   runs,
		Index:  index,
		Close: func() error {
			return errors.Join(index.Close(), closeRuns())
		},
	}

	if req.Source {
		source, err := dropbox.New(ctx, dropbox.Config{
			AccessToken:    cfg.Dropbox.AccessToken,
			RefreshToken:   cfg.Dropbox.RefreshToken,
			AppKey:         cfg.Dropbox.AppKey,
			AppSecret:      cfg.Dropbox.AppSecret,
			MaxContentSize: cfg.Dropbox.MaxContentSize,
			HTTPTimeout:    cfg.Ingest.FetchTimeout,
		})
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.Ingest = services.NewIngestor(source, extractors.NewDefaultRegistry(), index, runs, services.IngestOptions{
			Workers:      cfg.Ingest.Workers,
			Retries:      cfg.Ingest.Retries,
			RetryBackoff: cfg.Ingest.RetryBackoff,
			FetchTimeout: cfg.Ingest.FetchTimeout,
			IndexTimeout: cfg.Ingest.IndexTimeout,
			RunTimeout:   cfg.Ingest.RunTimeout,
		})
	}

	logger.Debug("wired %s", logger.Fields("backend", cfg.Index.Backend, "index", cfg.Index.Name, "data_dir", dataDir))
	return svc, nil
}

func openIndex(cfg *config.Config, dataDir string) (driven.SearchIndex, error) {
	switch cfg.Index.Backend {
	case config.BackendBleve:
		path := cfg.Index.BlevePath
		if path == "" {
			path = filepath.Join(dataDir, cfg.Index.Name+".bleve")
		}
		return bleveindex.Open(bleveindex.Config{Path: path, PageSize: cfg.Index.PageSize})
	default:
		return elasticsearch.New(elasticsearch.Config{
			Addresses: cfg.Index.Addresses,
			APIKey:    cfg.Index.APIKey,
			Index:     cfg.Index.Name,
			PageSize:  cfg.Index.PageSize,
		})
	}
}

// runStore is the run history as both the pipeline and the query
// surfaces see it.
type runStore interface {
	driven.RunStore
	driving.RunHistory
}

// openRunStore falls back to process-local history when the database
// cannot be opened, so ingestion still runs.
func openRunStore(dataDir string) (runStore, func() error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("run history: %v; keeping history in memory", err)
		return memory.NewRunStore(), func() error { return nil }
	}
	return store.RunStore(), store.Close
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".docsearch", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}
