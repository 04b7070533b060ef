// Package sink holds the export destinations used for download and share:
// a local directory, object storage and the system clipboard.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mhpenta/imagestudio"
)

// Dir writes payloads into a local directory, like a browser download.
type Dir struct {
	dir string
}

var _ imagestudio.Sink = (*Dir)(nil)

// NewDir creates a download sink for dir. The directory is created on
// first delivery.
func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

func (d *Dir) Name() string { return "download" }

func (d *Dir) Available() bool { return d.dir != "" }

// Deliver writes p.Filename into the directory, replacing any file of the
// same name.
func (d *Dir) Deliver(ctx context.Context, p imagestudio.Payload) (imagestudio.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return imagestudio.Delivery{}, err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return imagestudio.Delivery{}, fmt.Errorf("failed to create download directory: %w", err)
	}

	target := filepath.Join(d.dir, filepath.Base(p.Filename))
	tempPath := target + ".tmp"
	if err := os.WriteFile(tempPath, p.Data, 0644); err != nil {
		return imagestudio.Delivery{}, fmt.Errorf("failed to write %s: %w", p.Filename, err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return imagestudio.Delivery{}, fmt.Errorf("failed to commit %s: %w", p.Filename, err)
	}

	return imagestudio.Delivery{
		Sink:     d.Name(),
		Location: target,
		Message:  imagestudio.MsgDownloaded,
	}, nil
}
