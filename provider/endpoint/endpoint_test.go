package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mhpenta/imagestudio"
)

func newServer(t *testing.T, status int, body string, got *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	var req Request
	srv := newServer(t, http.StatusOK,
		`{"imageBase64":"QUJD","promptId":"p1","imageId":"i1","s3Key":"generated-images/i1.png","width":768,"height":512}`,
		&req)

	gen := New(srv.URL)
	res, err := gen.Generate(context.Background(), "a red fox", &imagestudio.GenerateConfig{
		Style: imagestudio.StyleAnime,
		Size:  imagestudio.SizeLandscape,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if req.Prompt != "a red fox" || req.Style != "anime" || req.Size != "landscape" {
		t.Errorf("request = %+v", req)
	}
	if res.ImageBase64 != "QUJD" || res.ImageID != "i1" || res.ObjectKey != "generated-images/i1.png" || res.Width != 768 {
		t.Errorf("result = %+v", res)
	}
}

func TestGenerate_OmitsEmptyOptions(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"imageBase64":"QUJD"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Generate(context.Background(), "x", &imagestudio.GenerateConfig{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["style"]; ok {
		t.Errorf("empty style should be omitted: %v", raw)
	}
	if _, ok := raw["size"]; ok {
		t.Errorf("empty size should be omitted: %v", raw)
	}
}

func TestGenerate_MissingImage(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{}`, nil)

	_, err := New(srv.URL).Generate(context.Background(), "a red fox", nil)
	if !errors.Is(err, imagestudio.ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
}

func TestGenerate_StatusError(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest,
		`{"error":"blocked","message":"Image blocked by safety filter."}`, nil)

	_, err := New(srv.URL).Generate(context.Background(), "something", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Message != "Image blocked by safety filter." {
		t.Errorf("StatusError = %+v", se)
	}
	if !IsBlocked(err) {
		t.Error("IsBlocked should be true")
	}
}

func TestGenerate_NonJSONError(t *testing.T) {
	srv := newServer(t, http.StatusBadGateway, `<html>bad gateway</html>`, nil)

	_, err := New(srv.URL).Generate(context.Background(), "something", nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway || IsBlocked(err) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerate_TransportError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{}`, nil)
	url := srv.URL
	srv.Close()

	if _, err := New(url).Generate(context.Background(), "x", nil); err == nil {
		t.Error("expected transport error")
	}
}

func TestGenerate_EmptyPromptNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL).Generate(context.Background(), "", nil)
	if !errors.Is(err, imagestudio.ErrEmptyPrompt) || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestModels(t *testing.T) {
	models := New("http://example.test/generate-image", WithRequestsPerMinute(6)).Models()
	if len(models) != 1 || models[0].RateLimits.RequestsPerMinute != 6 || models[0].Provider != imagestudio.ProviderEndpoint {
		t.Errorf("Models() = %+v", models)
	}
}
