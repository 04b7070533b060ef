package imagestudio

import (
	"context"
	"sync"
)

// MockImageGenerator is a mock implementation of ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error)
	ModelsFunc   func() []ModelInfo
	CloseFunc    func() error

	mu      sync.Mutex
	prompts []string
}

func (m *MockImageGenerator) Generate(ctx context.Context, prompt string, config *GenerateConfig) (*GenerateResult, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, config)
	}
	return &GenerateResult{ImageBase64: "QUJD"}, nil
}

func (m *MockImageGenerator) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{{Name: "mock-model", Provider: "mock"}}
}

func (m *MockImageGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns the prompts passed to Generate so far.
func (m *MockImageGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// mockSink records deliveries and fails with err when set.
type mockSink struct {
	name      string
	available bool
	err       error
	message   string
	delivered []Payload
}

func (s *mockSink) Name() string    { return s.name }
func (s *mockSink) Available() bool { return s.available }

func (s *mockSink) Deliver(_ context.Context, p Payload) (Delivery, error) {
	if s.err != nil {
		return Delivery{}, s.err
	}
	s.delivered = append(s.delivered, p)
	return Delivery{Location: s.name + "/" + p.Filename, Message: s.message}, nil
}
