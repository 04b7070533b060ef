package gemini

import "github.com/mhpenta/imagestudio"

// NanoBanana2Info is the model info for Gemini 3 Pro Image (nano-banana-2).
var NanoBanana2Info = imagestudio.ModelInfo{
	Name:         "nano-banana-2",
	Provider:     imagestudio.ProviderGemini,
	APIModelName: APIModelNanoBanana2,
	RateLimits: imagestudio.RateLimits{
		RequestsPerMinute: 360,
	},
}

// NanoBanana1Info is the model info for Gemini 2.5 Flash Image (nano-banana-1).
var NanoBanana1Info = imagestudio.ModelInfo{
	Name:         "nano-banana-1",
	Provider:     imagestudio.ProviderGemini,
	APIModelName: APIModelNanoBanana1,
	RateLimits: imagestudio.RateLimits{
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},
}
