package imagestudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mhpenta/imagestudio/kvstore"
	"github.com/mhpenta/imagestudio/ratelimiter"
)

// Controller owns the application state: the current image, the gallery,
// the saved store and the request phase. Every user action goes through it.
//
// Generate calls are not serialized. Two overlapping calls both run to
// completion; each inserts its image and the one finishing last becomes
// current.
type Controller struct {
	gen   ImageGenerator
	model ModelInfo

	gallery *Gallery
	saved   *SavedStore
	limiter ratelimiter.Limiter

	download Sink
	share    SinkChain

	notifier Notifier
	observer StateObserver
	renderer GalleryRenderer

	galleryCapacity int

	logger *slog.Logger
	now    func() time.Time
	newID  func(time.Time) string

	mu       sync.Mutex
	current  *GeneratedImage
	phase    Phase
	inFlight int
}

// Generate validates prompt, issues one request and, on success, makes
// the new image current and the newest gallery entry.
//
// Every failure after validation is returned as a *GenerationError; the
// gallery and the current image are left untouched.
func (c *Controller) Generate(ctx context.Context, prompt string, config *GenerateConfig) (GeneratedImage, error) {
	prompt, err := NormalizePrompt(prompt)
	if err != nil {
		if errors.Is(err, ErrEmptyPrompt) {
			c.notify(LevelError, MsgEnterPrompt)
		} else {
			c.notify(LevelError, err.Error())
		}
		return GeneratedImage{}, err
	}
	if config == nil {
		config = DefaultConfig()
	}

	model := c.resolveModel(config)
	start := c.now()

	c.beginRequest()
	defer c.endRequest()

	c.logger.Debug("starting image generation",
		"model", string(model),
		"prompt_length", len(prompt),
		"style", string(config.Style),
		"size", string(config.Size),
	)

	if err := c.checkRateLimit(model); err != nil {
		c.logger.Warn("rate limit hit",
			"model", string(model),
			"error", err.Error(),
		)
		return c.fail(model, err, MsgGenerateFailed)
	}

	result, err := c.gen.Generate(ctx, prompt, config)
	duration := c.now().Sub(start)

	if err == nil && (result == nil || result.ImageBase64 == "") {
		err = ErrNoImage
	}

	if errors.Is(err, ErrNoImage) {
		c.logger.Warn("generation returned no image",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return c.fail(model, err, MsgNoImageReturned)
	}

	if err != nil {
		c.logger.Error("generation failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return c.fail(model, err, MsgGenerateFailed)
	}

	createdAt := c.now()
	img := GeneratedImage{
		ID:        c.newID(createdAt),
		Prompt:    prompt,
		ImageData: result.ImageBase64,
		MIMEType:  result.MIMEType,
		CreatedAt: createdAt,
		Style:     config.Style,
		Size:      config.Size,
	}
	if img.MIMEType == "" {
		img.MIMEType = DefaultMIMEType
	}

	c.mu.Lock()
	c.current = &img
	c.mu.Unlock()

	c.gallery.Insert(img)
	c.transition(PhaseLoaded)

	logAttrs := []any{
		"model", string(model),
		"image_id", img.ID,
		"duration_ms", duration.Milliseconds(),
		"image_bytes", len(img.ImageData),
	}
	if result.ImageID != "" {
		logAttrs = append(logAttrs, "remote_image_id", result.ImageID)
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs, "total_tokens", result.UsageMetadata.TotalTokens)
	}
	c.logger.Info("generation completed", logAttrs...)
	c.notify(LevelSuccess, MsgGenerated)

	return img, nil
}

// Regenerate repeats the current image's prompt with its style and size.
func (c *Controller) Regenerate(ctx context.Context) (GeneratedImage, error) {
	cur, ok := c.Current()
	if !ok {
		c.notify(LevelError, MsgNoPrompt)
		return GeneratedImage{}, ErrNoCurrentImage
	}

	size := cur.Size
	if size == "" {
		size = SizeClientDefault
	}
	return c.Generate(ctx, cur.Prompt, &GenerateConfig{
		Style: cur.Style,
		Size:  size,
	})
}

// Select makes the gallery entry at index current. The gallery is not
// reordered. Out-of-range indexes return false.
func (c *Controller) Select(index int) (GeneratedImage, bool) {
	img, ok := c.gallery.Get(index)
	if !ok {
		return GeneratedImage{}, false
	}

	c.mu.Lock()
	c.current = &img
	c.mu.Unlock()
	return img, true
}

// ClearGallery empties the gallery. It returns false when there was
// nothing to clear. The saved store is not affected.
func (c *Controller) ClearGallery() bool {
	if !c.gallery.Clear() {
		c.notify(LevelInfo, MsgGalleryEmpty)
		return false
	}
	c.logger.Debug("gallery cleared")
	c.notify(LevelSuccess, MsgGalleryCleared)
	return true
}

// SaveCurrent copies the current image into the saved store.
func (c *Controller) SaveCurrent(ctx context.Context) error {
	cur, ok := c.Current()
	if !ok {
		c.notify(LevelError, MsgNoImageToSave)
		return ErrNoCurrentImage
	}

	if err := c.saved.Save(ctx, cur); err != nil {
		if IsAlreadySavedError(err) {
			c.notify(LevelError, MsgAlreadySaved)
			return err
		}
		c.logger.Error("save failed", "image_id", cur.ID, "error", err.Error())
		c.notify(LevelError, MsgSaveFailed)
		return err
	}

	c.logger.Info("image saved", "image_id", cur.ID, "saved_count", c.saved.Len())
	c.notify(LevelSuccess, MsgSaved)
	return nil
}

// Download writes the current image through the download sink.
func (c *Controller) Download(ctx context.Context) (Delivery, error) {
	cur, ok := c.Current()
	if !ok {
		c.notify(LevelError, MsgNoImageToDownload)
		return Delivery{}, ErrNoCurrentImage
	}

	d, err := c.export(ctx, cur, SinkChain{c.download})
	if err != nil {
		c.notify(LevelError, MsgDownloadFailed)
		return Delivery{}, err
	}

	c.notify(LevelSuccess, MsgDownloaded)
	return d, nil
}

// Share hands the current image to the share chain, typically a native
// share target followed by the clipboard.
func (c *Controller) Share(ctx context.Context) (Delivery, error) {
	cur, ok := c.Current()
	if !ok {
		c.notify(LevelError, MsgNoImageToShare)
		return Delivery{}, ErrNoCurrentImage
	}

	d, err := c.export(ctx, cur, c.share)
	if err != nil {
		c.notify(LevelError, MsgShareUnsupported)
		return Delivery{}, err
	}

	msg := d.Message
	if msg == "" {
		msg = MsgShared
	}
	c.notify(LevelSuccess, msg)
	return d, nil
}

func (c *Controller) export(ctx context.Context, img GeneratedImage, chain SinkChain) (Delivery, error) {
	payload, err := PayloadFor(img)
	if err != nil {
		return Delivery{}, errors.Join(ErrShareUnsupported, err)
	}

	d, err := chain.Deliver(ctx, payload)
	if err != nil {
		c.logger.Warn("export failed", "image_id", img.ID, "error", err.Error())
		return Delivery{}, err
	}

	c.logger.Info("image exported",
		"image_id", img.ID,
		"sink", d.Sink,
		"location", d.Location,
	)
	return d, nil
}

// Current returns the image being displayed, if any.
func (c *Controller) Current() (GeneratedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return GeneratedImage{}, false
	}
	return *c.current, true
}

// Phase returns the phase of the most recent request.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Gallery returns the recent-images gallery.
func (c *Controller) Gallery() *Gallery {
	return c.gallery
}

// Saved returns the durable store of explicitly saved images.
func (c *Controller) Saved() *SavedStore {
	return c.saved
}

// Model returns the default model of the configured generator.
func (c *Controller) Model() ModelInfo {
	return c.model
}

// Close releases the generator.
func (c *Controller) Close() error {
	return c.gen.Close()
}

func (c *Controller) beginRequest() {
	c.mu.Lock()
	c.inFlight++
	from := c.phase
	c.phase = PhaseLoading
	c.mu.Unlock()

	if from == PhaseLoaded || from == PhaseFailed {
		c.observe(from, PhaseIdle)
		from = PhaseIdle
	}
	if from != PhaseLoading {
		c.observe(from, PhaseLoading)
	}
}

func (c *Controller) endRequest() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

func (c *Controller) transition(to Phase) {
	c.mu.Lock()
	from := c.phase
	c.phase = to
	c.mu.Unlock()

	if from != to {
		c.observe(from, to)
	}
}

func (c *Controller) observe(from, to Phase) {
	if c.observer != nil {
		c.observer.PhaseChanged(from, to)
	}
}

func (c *Controller) fail(model Model, err error, msg string) (GeneratedImage, error) {
	c.transition(PhaseFailed)
	c.notify(LevelError, msg)
	return GeneratedImage{}, &GenerationError{Model: string(model), Err: err}
}

func (c *Controller) notify(level Level, msg string) {
	n := Notification{Level: level, Message: msg}
	if c.notifier != nil {
		c.notifier.Notify(n)
		return
	}

	logLevel := slog.LevelInfo
	if level == LevelError {
		logLevel = slog.LevelWarn
	}
	c.logger.Log(context.Background(), logLevel, msg, "notification", string(level))
}

// checkRateLimit takes one request slot from the limiter, if any.
func (c *Controller) checkRateLimit(model Model) error {
	if c.limiter == nil {
		return nil
	}
	if !c.limiter.TryAcquire() {
		return &RateLimitError{
			RetryAfter: c.limiter.TimeUntilAvailable(),
			LimitType:  "requests",
			Model:      string(model),
		}
	}
	return nil
}

// resolveModel determines the model name used for logging and errors.
func (c *Controller) resolveModel(config *GenerateConfig) Model {
	if config != nil && config.Model != "" {
		return config.Model
	}
	return Model(c.model.Name)
}

func newMemorySavedStore() *SavedStore {
	return &SavedStore{
		kv:  kvstore.NewMemory(),
		key: SavedImagesKey,
		ids: make(map[string]struct{}),
	}
}

// sequentialIDs derives IDs from the creation time plus a session counter,
// so two images created in the same millisecond still differ.
func sequentialIDs() func(time.Time) string {
	var seq atomic.Uint64
	return func(t time.Time) string {
		return fmt.Sprintf("%d-%d", t.UnixMilli(), seq.Add(1))
	}
}
