package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// BlobStore is the durable image store collaborator. Implementations
// must be safe for concurrent use; the coordinator shares one handle.
type BlobStore interface {
	// Upload persists the image under a fresh key namespaced by the
	// owning user and returns a stable URL.
	Upload(ctx context.Context, data []byte, fileName string, userID uint) (string, error)
	// Delete removes the object a previously returned URL points at.
	Delete(ctx context.Context, imageURL string) error
	// Replace deletes the old object then uploads the new one,
	// returning the new URL.
	Replace(ctx context.Context, oldImageURL string, data []byte, fileName string, userID uint) (string, error)
}

// buildObjectKey namespaces objects by owner and keeps the original
// file extension: "<userID>/<uuid><ext>".
func buildObjectKey(fileName string, userID uint) string {
	extension := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%d/%s%s", userID, uuid.NewString(), extension)
}

func contentTypeForExtension(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
