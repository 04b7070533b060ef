// Package server exposes an ImageGenerator over HTTP. POST /generate-image
// styles the prompt, generates one image, stores it and records the
// request and image metadata.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/metadata"
	"github.com/mhpenta/imagestudio/provider/bedrock"
	"github.com/mhpenta/imagestudio/provider/endpoint"
	"github.com/mhpenta/imagestudio/ratelimiter"
)

const (
	// DefaultPrompt is used when the request carries no prompt.
	DefaultPrompt = "a simple image"

	// ImagePrefix is the storage prefix for generated images.
	ImagePrefix = "generated-images"

	maxRequestBytes = 1 << 20
)

// Recorder persists prompt and image metadata. *metadata.Store implements it.
type Recorder interface {
	RecordPrompt(ctx context.Context, p *metadata.PromptRecord) error
	RecordImage(ctx context.Context, img *metadata.ImageRecord) error
}

// generateRequest accepts both the short and the long field names.
type generateRequest struct {
	Prompt    *string `json:"prompt"`
	Size      string  `json:"size"`
	ImageSize string  `json:"imageSize"`
	Style     string  `json:"style"`
	ArtStyle  string  `json:"artStyle"`
}

type errorBody struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	Prompt       string `json:"prompt,omitempty"`
	StyledPrompt string `json:"styledPrompt,omitempty"`
}

// Server handles image generation requests.
type Server struct {
	gen      imagestudio.ImageGenerator
	storage  imagestudio.Storage
	recorder Recorder
	limiter  ratelimiter.Limiter
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStorage uploads every generated image. Without storage the response
// carries no s3Key.
func WithStorage(storage imagestudio.Storage) Option {
	return func(s *Server) {
		s.storage = storage
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithRateLimiter rejects requests with 429 once l has no slot left.
func WithRateLimiter(l ratelimiter.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithIDFunc replaces uuid.NewString for prompt and image ids.
func WithIDFunc(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(gen imagestudio.ImageGenerator, opts ...Option) *Server {
	s := &Server{
		gen:    gen,
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the gin engine serving all routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	r.GET("/healthz", s.handleHealth)
	r.POST("/generate-image", s.handleGenerate)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": s.modelName()})
}

// modelName is the generator's default model.
func (s *Server) modelName() string {
	if models := s.gen.Models(); len(models) > 0 {
		return models[0].Name
	}
	return ""
}

func (s *Server) handleGenerate(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := bindRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()})
		return
	}

	prompt := DefaultPrompt
	if req.Prompt != nil {
		prompt = *req.Prompt
	}
	prompt, err = imagestudio.NormalizePrompt(prompt)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: err.Error()})
		return
	}

	sizeValue := firstNonEmpty(req.Size, req.ImageSize)
	styleValue := firstNonEmpty(req.Style, req.ArtStyle)
	size := imagestudio.Size(sizeValue)
	style := imagestudio.Style(styleValue)

	width, height := size.Dimensions()
	styled := imagestudio.ApplyStyle(prompt, style)

	if s.limiter != nil && !s.limiter.TryAcquire() {
		s.writeGenerateError(c, &imagestudio.RateLimitError{
			RetryAfter: s.limiter.TimeUntilAvailable(),
			LimitType:  "requests",
			Model:      s.modelName(),
		}, prompt, styled, 0)
		return
	}

	start := s.now()
	result, err := s.gen.Generate(ctx, prompt, &imagestudio.GenerateConfig{Style: style, Size: size})
	duration := s.now().Sub(start)
	if err != nil {
		s.writeGenerateError(c, err, prompt, styled, duration)
		return
	}
	if result == nil || result.ImageBase64 == "" {
		c.JSON(http.StatusBadGateway, errorBody{Error: "generation_failed", Message: imagestudio.ErrNoImage.Error()})
		return
	}

	if result.StyledPrompt != "" {
		styled = result.StyledPrompt
	}
	if result.Width > 0 && result.Height > 0 {
		width, height = result.Width, result.Height
	}

	imageBytes, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadGateway, errorBody{Error: "generation_failed", Message: "provider returned invalid image data"})
		return
	}

	now := s.now().UTC()
	promptID := s.newID()
	imageID := s.newID()

	if s.recorder != nil {
		err := s.recorder.RecordPrompt(ctx, &metadata.PromptRecord{
			PromptID:     promptID,
			PromptText:   prompt,
			StyledPrompt: styled,
			Size:         sizeValue,
			Style:        styleValue,
			CreatedAt:    now,
		})
		if err != nil {
			s.internalError(c, "record prompt", err)
			return
		}
	}

	var objectKey string
	if s.storage != nil {
		stored, err := imagestudio.SaveToStorage(ctx, s.storage, imageBytes, imagestudio.DefaultMIMEType, ImagePrefix, imageID)
		if err != nil {
			s.internalError(c, "upload image", err)
			return
		}
		objectKey = stored.Path
	}

	if s.recorder != nil {
		err := s.recorder.RecordImage(ctx, &metadata.ImageRecord{
			ImageID:   imageID,
			PromptID:  promptID,
			ObjectKey: objectKey,
			Width:     width,
			Height:    height,
			CreatedAt: now,
		})
		if err != nil {
			s.internalError(c, "record image", err)
			return
		}
	}

	s.logger.Info("image generated",
		"request_id", RequestID(ctx),
		"prompt_id", promptID,
		"image_id", imageID,
		"s3_key", objectKey,
		"prompt_length", len(prompt),
		"duration_ms", duration.Milliseconds(),
	)

	c.JSON(http.StatusOK, endpoint.Response{
		PromptID:    promptID,
		ImageID:     imageID,
		S3Key:       objectKey,
		Width:       width,
		Height:      height,
		ImageBase64: result.ImageBase64,
	})
}

func (s *Server) writeGenerateError(c *gin.Context, err error, prompt, styled string, duration time.Duration) {
	s.logger.Warn("generation failed",
		"request_id", RequestID(c.Request.Context()),
		"duration_ms", duration.Milliseconds(),
		"error", err.Error(),
	)

	var rlErr *imagestudio.RateLimitError
	switch {
	case errors.Is(err, bedrock.ErrBlocked):
		c.JSON(http.StatusBadRequest, errorBody{
			Error:        "blocked",
			Message:      bedrock.BlockedMessage,
			Prompt:       prompt,
			StyledPrompt: styled,
		})
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			c.Header("Retry-After", retryAfterSeconds(rlErr.RetryAfter))
		}
		c.JSON(http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, errorBody{Error: "generation_failed", Message: err.Error()})
	}
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error(op+" failed",
		"request_id", RequestID(c.Request.Context()),
		"error", err.Error(),
	)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: op + " failed"})
}

// bindRequest decodes the body. An empty body is an empty request.
func bindRequest(c *gin.Context) (generateRequest, error) {
	var req generateRequest

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBytes))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req, nil
}

// retryAfterSeconds rounds d up to whole seconds for the Retry-After header.
func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
