package imagestudio

import (
	"strings"
)

// Model represents a specific image generation model.
type Model string

// Style is an art style hint appended to the prompt by the generation backend.
type Style string

const (
	StyleDefault        Style = ""
	StylePhotorealistic Style = "photorealistic"
	StyleDigitalArt     Style = "digital art"
	StyleOilPainting    Style = "oil painting"
	StyleWatercolor     Style = "watercolor"
	StyleAnime          Style = "anime"
	StyleCyberpunk      Style = "cyberpunk"
	StyleFantasy        Style = "fantasy"
)

var styleSuffixes = map[Style]string{
	StylePhotorealistic: "Rendered as an ultra realistic photograph with natural lighting.",
	StyleDigitalArt:     "Illustrated in high quality digital art style.",
	StyleOilPainting:    "Painted in detailed oil painting style on canvas.",
	StyleWatercolor:     "Painted in soft watercolor illustration style.",
	StyleAnime:          "Drawn in clean, colorful anime illustration style.",
	StyleCyberpunk:      "With neon lights and futuristic cyberpunk aesthetic.",
	StyleFantasy:        "In a magical fantasy art style.",
}

// Styles returns the known styles in display order.
func Styles() []Style {
	return []Style{
		StylePhotorealistic,
		StyleDigitalArt,
		StyleOilPainting,
		StyleWatercolor,
		StyleAnime,
		StyleCyberpunk,
		StyleFantasy,
	}
}

// ApplyStyle appends the style sentence for style to prompt.
// Unknown or empty styles leave the prompt unchanged.
func ApplyStyle(prompt string, style Style) string {
	suffix, ok := styleSuffixes[Style(strings.ToLower(string(style)))]
	if !ok {
		return prompt
	}
	return prompt + " " + suffix
}

// Size is an output size label. Both short labels ("landscape") and
// descriptive ones ("Landscape (768x512)") are accepted.
type Size string

const (
	SizeDefault   Size = ""
	SizeSquare    Size = "square"
	SizeLandscape Size = "landscape"
	SizePortrait  Size = "portrait"

	// SizeClientDefault is the size the interactive client selects initially.
	SizeClientDefault Size = "512x512"
)

// Dimensions maps the label to pixel width and height.
// Unrecognised labels fall back to 1024x1024.
func (s Size) Dimensions() (width, height int) {
	if s == "" {
		return 1024, 1024
	}

	v := strings.ToLower(string(s))
	switch {
	case strings.Contains(v, "landscape") || strings.Contains(v, "768x512"):
		return 768, 512
	case strings.Contains(v, "portrait") || strings.Contains(v, "512x768"):
		return 512, 768
	case strings.Contains(v, "square") || strings.Contains(v, "512x512"):
		return 512, 512
	default:
		return 1024, 1024
	}
}

// AspectRatio returns the ratio for providers that take ratios instead of pixels.
func (s Size) AspectRatio() AspectRatio {
	w, h := s.Dimensions()
	switch {
	case w > h:
		return AspectRatio3x2
	case h > w:
		return AspectRatio2x3
	default:
		return AspectRatio1x1
	}
}

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1 AspectRatio = "1:1"
	AspectRatio2x3 AspectRatio = "2:3" // Photo portrait
	AspectRatio3x2 AspectRatio = "3:2" // Photo landscape
)

// GenerateConfig holds configuration options for image generation.
type GenerateConfig struct {
	// Model to use for generation (if empty, the generator's default)
	Model Model

	// Style hint; empty means no style sentence is added
	Style Style

	// Size label of the output image
	Size Size
}

// DefaultConfig returns a GenerateConfig with the client defaults.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Size: SizeClientDefault,
	}
}

func (s Style) String() string {
	return string(s)
}

func (s Size) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
