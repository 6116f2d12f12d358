package domain

import "time"

// RemoteFileRef identifies a file in remote storage.
// It is produced by listing and never modified afterwards.
type RemoteFileRef struct {
	// ID is the provider-assigned stable identifier (e.g. "id:a4ayc_80_OEAAAAAAAAAXw").
	// It keys the indexed document across ingestion runs.
	ID string

	// Path is the provider path used to download the file.
	Path string

	// Name is the file name including its extension.
	Name string

	// Size is the file size in bytes.
	Size uint64

	// LastModified is the client-side modification time reported by the provider.
	LastModified time.Time
}

// ListOptions controls how a folder is listed.
type ListOptions struct {
	// Recursive lists every descendant instead of immediate children only.
	Recursive bool
}
