package sink

import (
	"context"
	"strings"

	"github.com/mhpenta/imagestudio"
)

// DefaultSharePrefix is the key prefix for shared images.
const DefaultSharePrefix = "shared-images"

// ObjectStore shares an image by uploading it and returning its public URL.
type ObjectStore struct {
	storage imagestudio.Storage
	prefix  string
}

var _ imagestudio.Sink = (*ObjectStore)(nil)

// NewObjectStore wraps storage. An empty prefix selects DefaultSharePrefix.
func NewObjectStore(storage imagestudio.Storage, prefix string) *ObjectStore {
	if prefix == "" {
		prefix = DefaultSharePrefix
	}
	return &ObjectStore{storage: storage, prefix: prefix}
}

func (o *ObjectStore) Name() string { return "object-store" }

func (o *ObjectStore) Available() bool { return o.storage != nil }

func (o *ObjectStore) Deliver(ctx context.Context, p imagestudio.Payload) (imagestudio.Delivery, error) {
	name := strings.TrimSuffix(p.Filename, "."+extension(p.Filename))

	res, err := imagestudio.SaveToStorage(ctx, o.storage, p.Data, p.MIMEType, o.prefix, name)
	if err != nil {
		return imagestudio.Delivery{}, err
	}

	return imagestudio.Delivery{
		Sink:     o.Name(),
		Location: res.URL,
		Message:  imagestudio.MsgShared,
	}, nil
}

func extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}
