// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mhpenta/imagestudio"
)

// Model name constants - the actual API model names.
const (
	// APIModelNanoBanana2 is the actual API name for Gemini 3 Pro Image
	APIModelNanoBanana2 = "gemini-3-pro-image-preview"

	// APIModelNanoBanana1 is the actual API name for Gemini 2.5 Flash Image
	APIModelNanoBanana1 = "gemini-2.5-flash-image"
)

// contentGenerator is the subset of genai.Models used by the generator.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements ImageGenerator using Google's Gemini API.
type GeminiGenerator struct {
	models contentGenerator
}

var _ imagestudio.ImageGenerator = (*GeminiGenerator)(nil)

// NewWithAPIKey creates a generator for the Gemini API. If apiKey is empty,
// the SDK falls back to the GOOGLE_API_KEY or GEMINI_API_KEY env vars.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{models: client.Models}, nil
}

// Generate creates one image from a text prompt. The style sentence is
// appended to the prompt and the size label becomes an aspect ratio.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, config *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	if err := imagestudio.ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	if config == nil {
		config = imagestudio.DefaultConfig()
	}

	modelName := g.resolveModel(config)
	styled := imagestudio.ApplyStyle(prompt, config.Style)

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: styled},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: config.Size.AspectRatio().String(),
		},
	}

	result, err := g.models.GenerateContent(ctx, modelName, contents, genConfig)
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	genResult, err := parseResult(result)
	if err != nil {
		return nil, err
	}
	genResult.StyledPrompt = styled
	return genResult, nil
}

// Models returns the model definitions supported by this provider.
// The first model (NanoBanana2) is the default.
func (g *GeminiGenerator) Models() []imagestudio.ModelInfo {
	return []imagestudio.ModelInfo{
		NanoBanana2Info,
		NanoBanana1Info,
	}
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel maps a public model name to its API name.
// Falls back to the first model (default) if none specified.
func (g *GeminiGenerator) resolveModel(config *imagestudio.GenerateConfig) string {
	if config != nil && config.Model != "" {
		for _, info := range g.Models() {
			if info.Name == string(config.Model) {
				return info.APIModelName
			}
		}
		return string(config.Model)
	}
	return g.Models()[0].APIModelName
}

// parseResult takes the first inline image of the response.
func parseResult(result *genai.GenerateContentResponse) (*imagestudio.GenerateResult, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	genResult := &imagestudio.GenerateResult{}
	var text []string

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			if part.Text != "" {
				text = append(text, part.Text)
			}
			if genResult.ImageBase64 == "" && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				genResult.ImageBase64 = base64.StdEncoding.EncodeToString(part.InlineData.Data)
				genResult.MIMEType = part.InlineData.MIMEType
			}
		}
	}

	if genResult.ImageBase64 == "" {
		if len(text) > 0 {
			return nil, fmt.Errorf("%w: %s", imagestudio.ErrNoImage, strings.Join(text, " "))
		}
		return nil, imagestudio.ErrNoImage
	}

	if result.UsageMetadata != nil {
		genResult.UsageMetadata = &imagestudio.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return genResult, nil
}

// checkRateLimitError checks if an error from the Gemini API is a rate limit error.
// If so, it wraps it in a RateLimitError for standardized handling; otherwise returns nil.
func checkRateLimitError(err error, model string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return nil
	}

	return &imagestudio.RateLimitError{
		RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        err,
	}
}
