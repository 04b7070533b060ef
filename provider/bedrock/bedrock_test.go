package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/mhpenta/imagestudio"
)

type mockInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (m *mockInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(m.body)}, nil
}

func TestGenerate_BuildsTitanPayload(t *testing.T) {
	mock := &mockInvoker{body: `{"images":["QUJD"]}`}
	gen := New(mock)

	res, err := gen.Generate(context.Background(), "a lighthouse", &imagestudio.GenerateConfig{
		Style: imagestudio.StyleWatercolor,
		Size:  imagestudio.SizePortrait,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if aws.ToString(mock.input.ModelId) != APIModelTitanImageV1 {
		t.Errorf("ModelId = %s", aws.ToString(mock.input.ModelId))
	}

	var req titanRequest
	if err := json.Unmarshal(mock.input.Body, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	wantText := "a lighthouse Painted in soft watercolor illustration style."
	if req.TaskType != "TEXT_IMAGE" || req.TextToImageParams.Text != wantText {
		t.Errorf("request = %+v", req)
	}
	c := req.ImageGenerationConfig
	if c.Width != 512 || c.Height != 768 || c.NumberOfImages != 1 || c.CfgScale != 8 || c.Quality != "standard" {
		t.Errorf("imageGenerationConfig = %+v", c)
	}

	if res.ImageBase64 != "QUJD" || res.StyledPrompt != wantText || res.Width != 512 || res.Height != 768 {
		t.Errorf("result = %+v", res)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		mock  *mockInvoker
		check func(error) bool
	}{
		{
			name:  "validation exception is blocked",
			mock:  &mockInvoker{err: &types.ValidationException{Message: aws.String("content filter")}},
			check: func(err error) bool { return errors.Is(err, ErrBlocked) },
		},
		{
			name:  "throttling is rate limited",
			mock:  &mockInvoker{err: &types.ThrottlingException{Message: aws.String("slow down")}},
			check: imagestudio.IsRateLimitError,
		},
		{
			name:  "no images",
			mock:  &mockInvoker{body: `{"images":[]}`},
			check: func(err error) bool { return errors.Is(err, imagestudio.ErrNoImage) },
		},
		{
			name:  "error field",
			mock:  &mockInvoker{body: `{"images":[],"error":"bad"}`},
			check: func(err error) bool { return err != nil && !errors.Is(err, imagestudio.ErrNoImage) },
		},
		{
			name:  "other failure",
			mock:  &mockInvoker{err: errors.New("network down")},
			check: func(err error) bool { return err != nil && !errors.Is(err, ErrBlocked) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mock).Generate(context.Background(), "x", nil)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewWithStaticCredentials_RequiresKeys(t *testing.T) {
	if _, err := NewWithStaticCredentials("", "", ""); err == nil {
		t.Error("expected error for missing credentials")
	}
	if _, err := NewWithStaticCredentials("", "AKIA", "secret"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
