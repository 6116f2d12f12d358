package dropbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// filesClient is the subset of files.Client the source uses.
type filesClient interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// Source lists and downloads files from a Dropbox account.
type Source struct {
	client  filesClient
	limiter *RateLimiter
	cfg     Config
}

// New creates a Source from credentials. The context scopes token
// refreshes for the refresh-token flow.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSource(files.New(sdkConfig(ctx, cfg)), cfg), nil
}

func newSource(client filesClient, cfg Config) *Source {
	return &Source{
		client:  client,
		limiter: NewRateLimiter(cfg.RateLimit),
		cfg:     cfg,
	}
}

// ListFiles returns every file under root. Any page failure discards the
// partial listing.
func (s *Source) ListFiles(ctx context.Context, root string, opts domain.ListOptions) ([]domain.RemoteFileRef, error) {
	path := normaliseRoot(root)

	arg := files.NewListFolderArg(path)
	arg.Recursive = opts.Recursive
	arg.Limit = s.cfg.pageSize()

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	res, err := call(ctx, func() (*files.ListFolderResult, error) {
		return s.client.ListFolder(arg)
	}, nil)
	if err != nil {
		return nil, s.listError(ctx, path, err)
	}

	var refs []domain.RemoteFileRef
	pages := 1
	for {
		for _, entry := range res.Entries {
			if file, ok := ShouldList(entry); ok {
				refs = append(refs, FileToRef(file))
			}
		}
		if !res.HasMore {
			break
		}

		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		cont := files.NewListFolderContinueArg(res.Cursor)
		res, err = call(ctx, func() (*files.ListFolderResult, error) {
			return s.client.ListFolderContinue(cont)
		}, nil)
		if err != nil {
			return nil, s.listError(ctx, path, err)
		}
		pages++
	}

	logger.Debug("dropbox: listed %d files from %q in %d pages", len(refs), root, pages)
	return refs, nil
}

// FetchBytes downloads the content of ref, bounded by MaxContentSize.
func (s *Source) FetchBytes(ctx context.Context, ref domain.RemoteFileRef) ([]byte, error) {
	limit := s.cfg.maxContentSize()
	if ref.Size > uint64(limit) {
		return nil, fmt.Errorf("%s: %w: %d bytes exceeds %d", ref.Name, domain.ErrContentTooLarge, ref.Size, limit)
	}

	path := downloadPath(ref)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	arg := files.NewDownloadArg(path)
	body, err := call(ctx, func() (io.ReadCloser, error) {
		_, rc, err := s.client.Download(arg)
		return rc, err
	}, func(rc io.ReadCloser) { rc.Close() })
	if err != nil {
		if abandoned(ctx, err) {
			return nil, fmt.Errorf("download %q: %w", path, err)
		}
		s.recordRateLimit(err)
		return nil, mapDownloadError(path, err)
	}
	defer body.Close()

	// The SDK is not context-aware; closing the body unblocks the read.
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(body, limit+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("download %q: %w: %w", path, domain.ErrSourceUnavailable, err)
	}
	if n > limit {
		return nil, fmt.Errorf("%s: %w: exceeds %d bytes", ref.Name, domain.ErrContentTooLarge, limit)
	}
	return buf.Bytes(), nil
}

// call runs an SDK request, which cannot observe ctx, and stops waiting
// for it once ctx ends. An abandoned request runs on until the HTTP client
// timeout; release then disposes of a successful result.
func call[T any](ctx context.Context, fn func() (T, error), release func(T)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		if release != nil {
			go func() {
				if r := <-done; r.err == nil {
					release(r.val)
				}
			}()
		}
		var zero T
		return zero, ctx.Err()
	}
}

// abandoned reports whether err is ctx ending rather than a Dropbox error.
func abandoned(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}

func (s *Source) listError(ctx context.Context, path string, err error) error {
	if abandoned(ctx, err) {
		return fmt.Errorf("list %q: %w", path, err)
	}
	s.recordRateLimit(err)
	return mapListError(path, err)
}

func (s *Source) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dropbox rate limiter: %w", err)
	}
	return nil
}

func (s *Source) recordRateLimit(err error) {
	if after, ok := retryAfter(err); ok {
		logger.Warn("dropbox: rate limited, backing off %s", after)
		s.limiter.RecordRateLimitError(after)
	}
}
