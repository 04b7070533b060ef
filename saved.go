package imagestudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mhpenta/imagestudio/kvstore"
)

// SavedImagesKey is the key the saved list is persisted under.
const SavedImagesKey = "imageHistory"

// SavedStore is the durable list of images the user explicitly saved.
// It is independent of the gallery: gallery eviction and clearing never
// touch it.
type SavedStore struct {
	mu    sync.Mutex
	kv    kvstore.Store
	key   string
	items []GeneratedImage
	ids   map[string]struct{}
}

// OpenSavedStore reads the saved list once from kv. A missing key yields
// an empty store.
func OpenSavedStore(ctx context.Context, kv kvstore.Store) (*SavedStore, error) {
	s := &SavedStore{
		kv:  kv,
		key: SavedImagesKey,
		ids: make(map[string]struct{}),
	}

	data, err := kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load saved images: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.items); err != nil {
			return nil, fmt.Errorf("decode saved images: %w", err)
		}
	}
	for _, img := range s.items {
		s.ids[img.ID] = struct{}{}
	}
	return s, nil
}

// Save appends img and writes the whole list through to the key-value
// store. The in-memory list only changes after the write succeeded.
// Saving an ID twice returns an *AlreadySavedError.
func (s *SavedStore) Save(ctx context.Context, img GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[img.ID]; ok {
		return &AlreadySavedError{ID: img.ID}
	}

	next := make([]GeneratedImage, 0, len(s.items)+1)
	next = append(next, s.items...)
	next = append(next, img)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode saved images: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist saved images: %w", err)
	}

	s.items = next
	s.ids[img.ID] = struct{}{}
	return nil
}

// Contains reports whether an image with id has been saved.
func (s *SavedStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// List returns the saved images in save order.
func (s *SavedStore) List() []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]GeneratedImage, len(s.items))
	copy(out, s.items)
	return out
}

func (s *SavedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
