package dropbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/auth"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// tagNotFound is the LookupError tag for a missing path.
const tagNotFound = "not_found"

// The SDK returns its API errors as values; some wrappers hand back
// pointers. Each helper below matches either form.

func asRateLimitError(err error) (auth.RateLimitAPIError, bool) {
	var v auth.RateLimitAPIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *auth.RateLimitAPIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func asAuthError(err error) (auth.AuthAPIError, bool) {
	var v auth.AuthAPIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *auth.AuthAPIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func asInternalError(err error) (dropbox.SDKInternalError, bool) {
	var v dropbox.SDKInternalError
	if errors.As(err, &v) {
		return v, true
	}
	var p *dropbox.SDKInternalError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func asListFolderError(err error) (files.ListFolderAPIError, bool) {
	var v files.ListFolderAPIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *files.ListFolderAPIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func asListContinueError(err error) (files.ListFolderContinueAPIError, bool) {
	var v files.ListFolderContinueAPIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *files.ListFolderContinueAPIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

func asDownloadError(err error) (files.DownloadAPIError, bool) {
	var v files.DownloadAPIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *files.DownloadAPIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return v, false
}

// retryAfter extracts the backoff hint from a 429 error, or zero.
func retryAfter(err error) (time.Duration, bool) {
	rl, ok := asRateLimitError(err)
	if !ok {
		return 0, false
	}
	if rl.RateLimitError == nil {
		return 0, true
	}
	return time.Duration(rl.RateLimitError.RetryAfter) * time.Second, true
}

// mapCommonError classifies errors shared by every endpoint.
func mapCommonError(op string, err error) error {
	if a, ok := asAuthError(err); ok {
		tag := ""
		if a.AuthError != nil {
			tag = a.AuthError.Tag
		}
		return fmt.Errorf("%s: %w: %w (%s)", op, domain.ErrSourceUnavailable, domain.ErrAuthInvalid, tag)
	}
	if _, ok := asRateLimitError(err); ok {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, domain.ErrRateLimited)
	}
	if internal, ok := asInternalError(err); ok {
		return fmt.Errorf("%s: %w: status %d", op, domain.ErrSourceUnavailable, internal.StatusCode)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, err)
}

// mapListError classifies list_folder failures. Listing is all-or-nothing,
// so a missing root is still a source failure.
func mapListError(root string, err error) error {
	if le, ok := asListFolderError(err); ok && le.EndpointError != nil {
		if le.EndpointError.Path != nil && le.EndpointError.Path.Tag == tagNotFound {
			return fmt.Errorf("list %q: %w: %w", root, domain.ErrSourceUnavailable, domain.ErrNotFound)
		}
		return fmt.Errorf("list %q: %w: %s", root, domain.ErrSourceUnavailable, le.EndpointError.Tag)
	}
	if ce, ok := asListContinueError(err); ok && ce.EndpointError != nil {
		return fmt.Errorf("list %q: %w: %s", root, domain.ErrSourceUnavailable, ce.EndpointError.Tag)
	}
	return mapCommonError(fmt.Sprintf("list %q", root), err)
}

// mapDownloadError classifies files/download failures. A missing path is
// ErrNotFound only, so the pipeline does not retry it.
func mapDownloadError(path string, err error) error {
	if de, ok := asDownloadError(err); ok && de.EndpointError != nil {
		if de.EndpointError.Path != nil && de.EndpointError.Path.Tag == tagNotFound {
			return fmt.Errorf("download %q: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("download %q: %w: %s", path, domain.ErrSourceUnavailable, de.EndpointError.Tag)
	}
	return mapCommonError(fmt.Sprintf("download %q", path), err)
}
