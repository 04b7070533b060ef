package imagestudio

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// GeneratedImage is one successful generation. It is never mutated after
// creation; the gallery, the saved store and the controller hand out copies.
type GeneratedImage struct {
	ID        string
	Prompt    string
	ImageData string // base64-encoded raster bytes
	MIMEType  string
	CreatedAt time.Time
	Style     Style
	Size      Size
}

// imageJSON is the persisted form, kept compatible with the browser history format.
type imageJSON struct {
	ID          string `json:"id"`
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"imageBase64"`
	MIMEType    string `json:"mimeType,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	Style       Style  `json:"style,omitempty"`
	Size        Size   `json:"size,omitempty"`
}

func (img GeneratedImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		ID:          img.ID,
		Prompt:      img.Prompt,
		ImageBase64: img.ImageData,
		MIMEType:    img.MIMEType,
		Timestamp:   img.CreatedAt.UnixMilli(),
		Style:       img.Style,
		Size:        img.Size,
	})
}

func (img *GeneratedImage) UnmarshalJSON(data []byte) error {
	var raw imageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*img = GeneratedImage{
		ID:        raw.ID,
		Prompt:    raw.Prompt,
		ImageData: raw.ImageBase64,
		MIMEType:  raw.MIMEType,
		CreatedAt: time.UnixMilli(raw.Timestamp),
		Style:     raw.Style,
		Size:      raw.Size,
	}
	if img.MIMEType == "" {
		img.MIMEType = DefaultMIMEType
	}
	return nil
}

// Bytes decodes the image payload.
func (img GeneratedImage) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.ImageData)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", img.ID, err)
	}
	return data, nil
}

// DataURI returns the payload as a data: URI usable as an image source.
func (img GeneratedImage) DataURI() string {
	mime := img.MIMEType
	if mime == "" {
		mime = DefaultMIMEType
	}
	return "data:" + mime + ";base64," + img.ImageData
}

// Filename is the suggested download name.
func (img GeneratedImage) Filename() string {
	return "ai-generated-" + img.ID + "." + extensionFromMIME(img.MIMEType)
}

// GenerateResult holds the result of one generation call.
type GenerateResult struct {
	// ImageBase64 is the encoded image; empty means the backend returned no image
	ImageBase64 string

	// MIMEType of the generated image
	MIMEType string

	Width  int
	Height int

	// StyledPrompt is the prompt after the style sentence was applied
	StyledPrompt string

	// Identifiers assigned by a remote endpoint, if any
	PromptID  string
	ImageID   string
	ObjectKey string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}
