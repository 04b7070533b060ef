package imagestudio

import "testing"

func TestSize_Dimensions(t *testing.T) {
	tests := []struct {
		size          Size
		width, height int
		ratio         AspectRatio
	}{
		{SizeDefault, 1024, 1024, AspectRatio1x1},
		{SizeSquare, 512, 512, AspectRatio1x1},
		{SizeClientDefault, 512, 512, AspectRatio1x1},
		{SizeLandscape, 768, 512, AspectRatio3x2},
		{"Landscape (768x512)", 768, 512, AspectRatio3x2},
		{SizePortrait, 512, 768, AspectRatio2x3},
		{"512x768", 512, 768, AspectRatio2x3},
		{"huge", 1024, 1024, AspectRatio1x1},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			w, h := tt.size.Dimensions()
			if w != tt.width || h != tt.height {
				t.Errorf("Dimensions() = %dx%d, want %dx%d", w, h, tt.width, tt.height)
			}
			if got := tt.size.AspectRatio(); got != tt.ratio {
				t.Errorf("AspectRatio() = %q, want %q", got, tt.ratio)
			}
		})
	}
}

func TestApplyStyle(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		want  string
	}{
		{"no style", StyleDefault, "a cat"},
		{"unknown style", "pointillism", "a cat"},
		{"anime", StyleAnime, "a cat Drawn in clean, colorful anime illustration style."},
		{"case insensitive", "Oil Painting", "a cat Painted in detailed oil painting style on canvas."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyStyle("a cat", tt.style); got != tt.want {
				t.Errorf("ApplyStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStyles_AllHaveSuffix(t *testing.T) {
	for _, s := range Styles() {
		if ApplyStyle("x", s) == "x" {
			t.Errorf("style %q has no prompt suffix", s)
		}
	}
}
