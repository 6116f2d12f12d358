package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestionPipeline = (*Ingestor)(nil)

// Pipeline defaults.
const (
	DefaultWorkers      = 4
	DefaultRetries      = 2
	DefaultRetryBackoff = time.Second
	DefaultFetchTimeout = 30 * time.Second
	DefaultIndexTimeout = 30 * time.Second

	saveTimeout = 10 * time.Second
)

// IngestOptions tunes the pipeline. Zero values take the defaults above;
// a zero RunTimeout means no overall deadline.
type IngestOptions struct {
	Workers      int
	Retries      int
	RetryBackoff time.Duration
	FetchTimeout time.Duration
	IndexTimeout time.Duration
	RunTimeout   time.Duration
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.IndexTimeout <= 0 {
		o.IndexTimeout = DefaultIndexTimeout
	}
	return o
}

// Ingestor lists a remote folder and indexes every supported file.
type Ingestor struct {
	source     driven.FileSource
	extractors driven.ExtractorRegistry
	index      driven.SearchIndex
	runs       driven.RunStore
	opts       IngestOptions

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIngestor creates an ingestion pipeline. runs may be nil, in which case
// reports are returned but not persisted. Pass an untyped nil: a nil
// pointer wrapped in driven.RunStore is a non-nil store and is called.
func NewIngestor(
	source driven.FileSource,
	extractors driven.ExtractorRegistry,
	index driven.SearchIndex,
	runs driven.RunStore,
	opts IngestOptions,
) *Ingestor {
	return &Ingestor{
		source:     source,
		extractors: extractors,
		index:      index,
		runs:       runs,
		opts:       opts.withDefaults(),
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Run executes one ingestion pass.
func (in *Ingestor) Run(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	if in.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.opts.RunTimeout)
		defer cancel()
	}

	rec := &recorder{report: domain.RunReport{
		ID:        uuid.NewString(),
		Root:      opts.Root,
		StartedAt: in.now().UTC(),
	}}

	logger.Section("Ingest")
	logger.Info("ingest: run %s listing %q (recursive=%t)", rec.report.ID, opts.Root, opts.Recursive)

	refs, err := in.source.ListFiles(ctx, opts.Root, domain.ListOptions{Recursive: opts.Recursive})
	if err != nil {
		logger.Error("ingest: listing %q failed: %v", opts.Root, err)
		rec.report.Failures = append(rec.report.Failures, domain.FileFailure{
			Stage: domain.StageListing,
			Error: err.Error(),
		})
		rec.report.Cancelled = ctx.Err() != nil
		report := in.finish(ctx, rec)
		return report, fmt.Errorf("list %q: %w", opts.Root, err)
	}
	rec.report.Listed = len(refs)
	logger.Info("ingest: %d files listed, %d workers", len(refs), in.opts.Workers)

	var g errgroup.Group
	g.SetLimit(in.opts.Workers)

	scheduled := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			in.ingestFile(ctx, ref, rec)
			return nil
		})
		scheduled++
	}
	_ = g.Wait()

	if scheduled < len(refs) || ctx.Err() != nil {
		rec.report.Cancelled = true
		logger.Warn("ingest: run cancelled after scheduling %d of %d files", scheduled, len(refs))
	}

	if opts.Prune {
		if rec.report.Cancelled {
			logger.Warn("ingest: prune skipped, run did not complete")
		} else {
			in.prune(ctx, refs, rec)
		}
	}

	report := in.finish(ctx, rec)
	logger.Info("ingest: run %s done in %s: %d indexed, %d skipped, %d failed, %d pruned",
		report.ID, report.Duration().Round(time.Millisecond),
		report.Indexed, report.Skipped, report.Failed, report.Pruned)

	if report.Cancelled {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return report, fmt.Errorf("ingest cancelled: %w", cause)
	}
	return report, nil
}

// ingestFile runs fetch, extract and index for one file. Failures are
// recorded, never returned.
func (in *Ingestor) ingestFile(ctx context.Context, ref domain.RemoteFileRef, rec *recorder) {
	if !in.extractors.Supports(ref.Name) {
		rec.skip(ref, &domain.UnsupportedFormatError{Ext: extOf(ref.Name)})
		return
	}

	data, err := in.fetch(ctx, ref)
	if err != nil {
		rec.fail(ref, domain.StageFetching, err)
		return
	}

	text, err := in.extractors.Extract(ctx, data, ref.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			rec.skip(ref, err)
			return
		}
		rec.fail(ref, domain.StageExtracting, err)
		return
	}

	doc := domain.NewIndexedDocument(domain.ExtractedDocument{
		Filename: ref.Name,
		Content:  text,
		SourceID: ref.ID,
	})

	// A document that made it this far is written even if the run is
	// being cancelled, bounded by the index timeout.
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), in.opts.IndexTimeout)
	defer cancel()

	if err := in.index.Upsert(ictx, doc); err != nil {
		rec.fail(ref, domain.StageIndexing, err)
		return
	}

	logger.Debug("ingest: indexed %s", logger.Fields("name", ref.Name, "id", ref.ID, "bytes", len(data)))
	rec.indexed()
}

// fetch downloads ref, retrying transient failures with a linear backoff.
func (in *Ingestor) fetch(ctx context.Context, ref domain.RemoteFileRef) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		fctx, cancel := context.WithTimeout(ctx, in.opts.FetchTimeout)
		data, err := in.source.FetchBytes(fctx, ref)
		cancel()
		if err == nil {
			return data, nil
		}

		if attempt >= in.opts.Retries || ctx.Err() != nil || !retryable(err) {
			return nil, err
		}

		wait := in.opts.RetryBackoff * time.Duration(attempt+1)
		logger.Debug("ingest: retrying %s in %s: %v", ref.Name, wait, err)
		if err := in.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// retryable reports whether a fetch error may succeed on a later attempt.
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrAuthInvalid),
		errors.Is(err, domain.ErrContentTooLarge):
		return false
	case errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// prune deletes indexed documents whose file is no longer listed.
func (in *Ingestor) prune(ctx context.Context, refs []domain.RemoteFileRef, rec *recorder) {
	listed := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		listed[ref.ID] = struct{}{}
	}

	ids, err := in.index.ListIDs(ctx)
	if err != nil {
		rec.fail(domain.RemoteFileRef{}, domain.StagePruning, err)
		return
	}

	for _, id := range ids {
		if _, ok := listed[id]; ok {
			continue
		}
		dctx, cancel := context.WithTimeout(ctx, in.opts.IndexTimeout)
		err := in.index.Delete(dctx, id)
		cancel()
		if err != nil {
			rec.fail(domain.RemoteFileRef{ID: id}, domain.StagePruning, err)
			continue
		}
		logger.Debug("ingest: pruned %s", id)
		rec.pruned()
	}
}

// finish stamps the report and persists it. A store failure is logged only.
func (in *Ingestor) finish(ctx context.Context, rec *recorder) *domain.RunReport {
	rec.mu.Lock()
	rec.report.FinishedAt = in.now().UTC()
	report := rec.report
	rec.mu.Unlock()

	if in.runs != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if err := in.runs.Save(sctx, report); err != nil {
			logger.Warn("ingest: saving run report %s: %v", report.ID, err)
		}
	}
	return &report
}

// recorder accumulates per-file outcomes from concurrent workers.
type recorder struct {
	mu     sync.Mutex
	report domain.RunReport
}

func (r *recorder) indexed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Indexed++
}

func (r *recorder) pruned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Pruned++
}

func (r *recorder) skip(ref domain.RemoteFileRef, err error) {
	logger.Info("ingest: skipped %s", logger.Fields("name", ref.Name, "id", ref.ID, "err", err))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Skipped++
	r.report.Failures = append(r.report.Failures, domain.FileFailure{
		SourceID: ref.ID,
		Name:     ref.Name,
		Stage:    domain.StageExtracting,
		Error:    err.Error(),
	})
}

func (r *recorder) fail(ref domain.RemoteFileRef, stage domain.Stage, err error) {
	logger.Warn("ingest: %s failed %s", stage, logger.Fields("name", ref.Name, "id", ref.ID, "stage", stage, "err", err))

	r.mu.Lock()
	defer r.mu.Unlock()
	if stage != domain.StagePruning {
		r.report.Failed++
	}
	r.report.Failures = append(r.report.Failures, domain.FileFailure{
		SourceID: ref.ID,
		Name:     ref.Name,
		Stage:    stage,
		Error:    err.Error(),
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func extOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
