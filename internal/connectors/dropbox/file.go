package dropbox

import (
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// FileToRef converts Dropbox file metadata into a RemoteFileRef.
// LastModified is the client-side modification time, not upload time.
func FileToRef(file *files.FileMetadata) domain.RemoteFileRef {
	return domain.RemoteFileRef{
		ID:           file.Id,
		Path:         file.PathDisplay,
		Name:         file.Name,
		Size:         file.Size,
		LastModified: file.ClientModified,
	}
}

// ShouldList reports whether a listing entry is an indexable file.
// Folders, deleted entries and non-downloadable files (Paper docs,
// Google files) are skipped.
func ShouldList(entry files.IsMetadata) (*files.FileMetadata, bool) {
	file, ok := entry.(*files.FileMetadata)
	if !ok || file == nil {
		return nil, false
	}
	return file, file.IsDownloadable
}

// normaliseRoot maps the user-facing root to the API form: the Dropbox
// root is the empty string, every other path starts with a slash.
func normaliseRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" || root == "/" {
		return ""
	}
	root = strings.TrimSuffix(root, "/")
	if !strings.HasPrefix(root, "/") && !strings.HasPrefix(root, "id:") {
		root = "/" + root
	}
	return root
}

// downloadPath prefers the stable id so renames between listing and
// download do not break the fetch.
func downloadPath(ref domain.RemoteFileRef) string {
	if ref.ID != "" {
		return ref.ID
	}
	return ref.Path
}
