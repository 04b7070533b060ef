package imagestudio

import (
	"context"
	"path"
)

// DefaultMIMEType is assumed for payloads that do not declare one.
const DefaultMIMEType = "image/png"

// Storage is an interface for persisting image bytes to object storage.
// Implementations wrap existing storage clients (S3, R2, ...).
type Storage interface {
	// SaveFile saves image data to storage and returns the public URL.
	// The path should include the full object path (e.g., "generated-images/abc.png").
	// The contentType is typically the image's MIME type (e.g., "image/png").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	// URL is the public URL where the image can be accessed
	URL string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveToStorage writes data under {prefix}/{name}.{extension}.
func SaveToStorage(
	ctx context.Context,
	storage Storage,
	data []byte,
	mimeType string,
	prefix string,
	name string) (StorageResult, error) {

	if storage == nil {
		return StorageResult{}, ErrStorageNotConfigured
	}
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	key := path.Join(prefix, name+"."+extensionFromMIME(mimeType))
	url, err := storage.SaveFile(ctx, data, key, mimeType)
	if err != nil {
		return StorageResult{}, err
	}

	return StorageResult{
		URL:  url,
		Path: key,
		Size: len(data),
	}, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
