package imagestudio

// Provider names the backend family serving a model.
type Provider string

const (
	ProviderEndpoint Provider = "endpoint"
	ProviderBedrock  Provider = "bedrock"
	ProviderGemini   Provider = "gemini"
)

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	RequestsPerMinute int // 0 = unlimited
}

// ModelInfo contains metadata for a model.
type ModelInfo struct {
	Name         string   // Public model name (e.g., "titan-image-v1")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "amazon.titan-image-generator-v1")

	RateLimits RateLimits
}
