// Package dropbox implements driven.FileSource over the Dropbox API v2.
//
// Listing walks files/list_folder and files/list_folder/continue until the
// cursor is exhausted; downloads go through files/download. Every API call
// waits on a token-bucket rate limiter, and a 429 response pauses the
// limiter for the Retry-After period reported by Dropbox.
//
// Dropbox SDK errors are mapped onto the domain taxonomy:
//
//   - path/not_found              -> domain.ErrNotFound
//   - 401 (invalid/expired token) -> domain.ErrAuthInvalid + ErrSourceUnavailable
//   - 429                         -> domain.ErrRateLimited + ErrSourceUnavailable
//   - everything else             -> domain.ErrSourceUnavailable
package dropbox
