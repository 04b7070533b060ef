package imagestudio

import (
	"log/slog"
	"time"

	"github.com/mhpenta/imagestudio/ratelimiter"
)

// ControllerOption configures the Controller.
type ControllerOption func(*Controller)

// WithLogger sets a structured logger for the controller.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSavedStore sets the durable saved-image store. Without it saves
// are kept in memory for the lifetime of the process.
func WithSavedStore(saved *SavedStore) ControllerOption {
	return func(c *Controller) {
		c.saved = saved
	}
}

// WithGalleryCapacity overrides DefaultGalleryCapacity.
func WithGalleryCapacity(n int) ControllerOption {
	return func(c *Controller) {
		c.galleryCapacity = n
	}
}

// WithGalleryRenderer is called with fresh summaries after every gallery change.
func WithGalleryRenderer(r GalleryRenderer) ControllerOption {
	return func(c *Controller) {
		c.renderer = r
	}
}

// WithNotifier receives one-shot status messages. Without it messages are logged.
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithStateObserver is told about request phase transitions.
func WithStateObserver(o StateObserver) ControllerOption {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithDownloadSink sets where Download writes images.
func WithDownloadSink(s Sink) ControllerOption {
	return func(c *Controller) {
		c.download = s
	}
}

// WithShareSinks sets the ordered share fallback chain.
func WithShareSinks(sinks ...Sink) ControllerOption {
	return func(c *Controller) {
		c.share = SinkChain(sinks)
	}
}

// WithRateLimiter replaces the limiter derived from the model's rate limits.
// Pass nil to disable client-side limiting.
func WithRateLimiter(l ratelimiter.Limiter) ControllerOption {
	return func(c *Controller) {
		c.limiter = l
	}
}

// WithIDFunc overrides how image IDs are derived from the creation time.
func WithIDFunc(f func(time.Time) string) ControllerOption {
	return func(c *Controller) {
		c.newID = f
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a Controller around a generator.
//
// Example:
//
//	gen := endpoint.New(endpointURL)
//	ctrl := imagestudio.NewController(gen,
//	    imagestudio.WithLogger(slog.Default()),
//	    imagestudio.WithSavedStore(saved),
//	)
//	img, err := ctrl.Generate(ctx, "a red fox", nil)
func NewController(gen ImageGenerator, opts ...ControllerOption) *Controller {
	c := &Controller{
		gen:    gen,
		logger: slog.Default(),
		now:    time.Now,
		newID:  sequentialIDs(),
		phase:  PhaseIdle,
	}

	if models := gen.Models(); len(models) > 0 {
		c.model = models[0]
		if rpm := c.model.RateLimits.RequestsPerMinute; rpm > 0 {
			c.limiter = ratelimiter.New(rpm)
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.saved == nil {
		c.saved = newMemorySavedStore()
	}
	c.gallery = NewGallery(c.galleryCapacity, c.renderer)

	return c
}
