// Package bedrock provides an ImageGenerator backed by Amazon Titan Image
// Generator through the Bedrock runtime API.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/mhpenta/imagestudio"
)

const (
	// APIModelTitanImageV1 is the Bedrock model ID for Titan Image Generator G1.
	APIModelTitanImageV1 = "amazon.titan-image-generator-v1"

	// DefaultRegion is where the Titan image model is served.
	DefaultRegion = "us-east-1"
)

// ErrBlocked is returned when Titan rejects the prompt with a validation error,
// which for image generation almost always means the safety filter fired.
var ErrBlocked = errors.New("image blocked by safety filter")

// BlockedMessage is the user-facing explanation for ErrBlocked.
const BlockedMessage = "Image blocked by safety filter. Try a simpler or clearly safe prompt."

// TitanImageV1Info is the model info for Titan Image Generator G1.
var TitanImageV1Info = imagestudio.ModelInfo{
	Name:         "titan-image-v1",
	Provider:     imagestudio.ProviderBedrock,
	APIModelName: APIModelTitanImageV1,
}

// InvokeModelAPI is the subset of the Bedrock runtime client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Generator implements imagestudio.ImageGenerator using Titan.
type Generator struct {
	client InvokeModelAPI
}

var _ imagestudio.ImageGenerator = (*Generator)(nil)

// New wraps an existing Bedrock runtime client.
func New(client InvokeModelAPI) *Generator {
	return &Generator{client: client}
}

// NewFromDefaultConfig loads credentials from the default AWS chain.
func NewFromDefaultConfig(ctx context.Context, region string) (*Generator, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(bedrockruntime.NewFromConfig(cfg)), nil
}

// NewWithStaticCredentials builds a client from an access key pair.
func NewWithStaticCredentials(region, accessKey, secretKey string) (*Generator, error) {
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("AWS credentials not provided")
	}
	if region == "" {
		region = DefaultRegion
	}
	client := bedrockruntime.New(bedrockruntime.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	})
	return New(client), nil
}

type textToImageParams struct {
	Text string `json:"text"`
}

type imageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Quality        string  `json:"quality"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int     `json:"seed"`
}

type titanRequest struct {
	TaskType              string                `json:"taskType"`
	TextToImageParams     textToImageParams     `json:"textToImageParams"`
	ImageGenerationConfig imageGenerationConfig `json:"imageGenerationConfig"`
}

type titanResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error"`
}

// Generate applies the style sentence, renders one image at the size's
// dimensions and returns it base64-encoded.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg *imagestudio.GenerateConfig) (*imagestudio.GenerateResult, error) {
	if err := imagestudio.ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = imagestudio.DefaultConfig()
	}

	styled := imagestudio.ApplyStyle(prompt, cfg.Style)
	width, height := cfg.Size.Dimensions()

	body, err := json.Marshal(titanRequest{
		TaskType:          "TEXT_IMAGE",
		TextToImageParams: textToImageParams{Text: styled},
		ImageGenerationConfig: imageGenerationConfig{
			NumberOfImages: 1,
			Quality:        "standard",
			Height:         height,
			Width:          width,
			CfgScale:       8,
			Seed:           0,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	modelID := APIModelTitanImageV1
	if cfg.Model != "" && cfg.Model != imagestudio.Model(TitanImageV1Info.Name) {
		modelID = string(cfg.Model)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, classifyError(err, modelID)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, fmt.Errorf("titan: %s", *resp.Error)
	}
	if len(resp.Images) == 0 || resp.Images[0] == "" {
		return nil, imagestudio.ErrNoImage
	}

	return &imagestudio.GenerateResult{
		ImageBase64:  resp.Images[0],
		MIMEType:     "image/png",
		Width:        width,
		Height:       height,
		StyledPrompt: styled,
	}, nil
}

func (g *Generator) Models() []imagestudio.ModelInfo {
	return []imagestudio.ModelInfo{TitanImageV1Info}
}

// Close is a no-op; the Bedrock client holds no resources needing release.
func (g *Generator) Close() error {
	return nil
}

// classifyError maps Bedrock failures onto ErrBlocked and RateLimitError.
func classifyError(err error, modelID string) error {
	var validation *types.ValidationException
	if errors.As(err, &validation) {
		return fmt.Errorf("%w (%s)", ErrBlocked, aws.ToString(validation.Message))
	}

	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return &imagestudio.RateLimitError{
			RetryAfter: 30 * time.Second,
			LimitType:  "requests",
			Model:      modelID,
			Err:        err,
		}
	}

	return fmt.Errorf("InvokeModel: %w", err)
}
