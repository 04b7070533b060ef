package imagestudio

import (
	"iter"
	"sync"
	"unicode/utf8"
)

const (
	// DefaultGalleryCapacity is the number of recent images the gallery keeps.
	DefaultGalleryCapacity = 10

	// summaryPromptLength is the number of prompt characters shown per summary.
	summaryPromptLength = 50
)

// GallerySummary is the render-ready projection of one gallery entry.
type GallerySummary struct {
	Index           int
	TruncatedPrompt string
	ThumbnailRef    string
}

// Gallery is a bounded, most-recent-first collection of generated images.
// Inserting beyond capacity evicts the oldest entry.
type Gallery struct {
	mu       sync.RWMutex
	items    []GeneratedImage
	capacity int
	renderer GalleryRenderer
}

// NewGallery creates a gallery holding at most capacity images.
// A non-positive capacity selects DefaultGalleryCapacity.
func NewGallery(capacity int, renderer GalleryRenderer) *Gallery {
	if capacity <= 0 {
		capacity = DefaultGalleryCapacity
	}
	return &Gallery{
		items:    make([]GeneratedImage, 0, capacity),
		capacity: capacity,
		renderer: renderer,
	}
}

// Insert prepends img, dropping the oldest entries beyond capacity.
func (g *Gallery) Insert(img GeneratedImage) {
	g.mu.Lock()
	items := make([]GeneratedImage, 0, g.capacity)
	items = append(items, img)
	items = append(items, g.items...)
	if len(items) > g.capacity {
		items = items[:g.capacity]
	}
	g.items = items
	g.mu.Unlock()

	g.render()
}

// List yields a summary per entry, newest first. Each range over the
// returned sequence walks the gallery as it is at that moment.
func (g *Gallery) List() iter.Seq[GallerySummary] {
	return func(yield func(GallerySummary) bool) {
		g.mu.RLock()
		items := g.items
		g.mu.RUnlock()

		for i, img := range items {
			if !yield(summarize(i, img)) {
				return
			}
		}
	}
}

// Summaries collects List into a slice.
func (g *Gallery) Summaries() []GallerySummary {
	summaries := make([]GallerySummary, 0, g.Len())
	for s := range g.List() {
		summaries = append(summaries, s)
	}
	return summaries
}

// Get returns the entry at index, or false if index is out of range.
func (g *Gallery) Get(index int) (GeneratedImage, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if index < 0 || index >= len(g.items) {
		return GeneratedImage{}, false
	}
	return g.items[index], true
}

// Clear empties the gallery. It reports false, and changes nothing,
// when the gallery was already empty.
func (g *Gallery) Clear() bool {
	g.mu.Lock()
	if len(g.items) == 0 {
		g.mu.Unlock()
		return false
	}
	g.items = make([]GeneratedImage, 0, g.capacity)
	g.mu.Unlock()

	g.render()
	return true
}

// Len returns the number of entries.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// Capacity returns the maximum number of entries.
func (g *Gallery) Capacity() int {
	return g.capacity
}

func (g *Gallery) render() {
	if g.renderer == nil {
		return
	}
	g.renderer.RenderGallery(g.Summaries())
}

func summarize(index int, img GeneratedImage) GallerySummary {
	return GallerySummary{
		Index:           index,
		TruncatedPrompt: truncatePrompt(img.Prompt, summaryPromptLength),
		ThumbnailRef:    img.DataURI(),
	}
}

func truncatePrompt(prompt string, limit int) string {
	if utf8.RuneCountInString(prompt) <= limit {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:limit]) + "..."
}
