package imagestudio

import "context"

// ImageGenerator is the core interface for image generation backends.
// Implement this interface to add support for new models or endpoints.
//
// The first model returned by Models() is considered the default model.
type ImageGenerator interface {
	// Generate creates one image from a text prompt.
	Generate(ctx context.Context, prompt string, genConfig *GenerateConfig) (*GenerateResult, error)

	// Models returns the model definitions served by this generator.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the generator.
	Close() error
}

// GalleryRenderer receives a fresh projection of the gallery after every
// effective mutation.
type GalleryRenderer interface {
	RenderGallery(summaries []GallerySummary)
}

// GalleryRendererFunc adapts a function to GalleryRenderer.
type GalleryRendererFunc func(summaries []GallerySummary)

func (f GalleryRendererFunc) RenderGallery(summaries []GallerySummary) { f(summaries) }

// StateObserver is told about every request phase transition.
type StateObserver interface {
	PhaseChanged(from, to Phase)
}

// StateObserverFunc adapts a function to StateObserver.
type StateObserverFunc func(from, to Phase)

func (f StateObserverFunc) PhaseChanged(from, to Phase) { f(from, to) }

// Notifier delivers one-shot status messages to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
