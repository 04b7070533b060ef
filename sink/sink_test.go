package sink

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/mhpenta/imagestudio"
)

func testPayload() imagestudio.Payload {
	return imagestudio.Payload{
		Filename: "ai-generated-1.png",
		MIMEType: "image/png",
		Data:     []byte("ABC"),
	}
}

func TestDir_Deliver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	d := NewDir(dir)

	if !d.Available() {
		t.Fatal("expected dir sink to be available")
	}

	got, err := d.Deliver(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	want := filepath.Join(dir, "ai-generated-1.png")
	if got.Location != want {
		t.Errorf("location = %s, want %s", got.Location, want)
	}
	if got.Message != imagestudio.MsgDownloaded {
		t.Errorf("message = %q", got.Message)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ABC" {
		t.Errorf("file content = %q", data)
	}
	if _, err := os.Stat(want + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestDir_NotConfigured(t *testing.T) {
	if NewDir("").Available() {
		t.Error("empty dir should be unavailable")
	}
}

type mockStorage struct {
	path        string
	contentType string
	err         error
}

func (m *mockStorage) SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error) {
	m.path = path
	m.contentType = contentType
	if m.err != nil {
		return "", m.err
	}
	return "https://cdn.example.com/" + path, nil
}

func TestObjectStore_Deliver(t *testing.T) {
	storage := &mockStorage{}
	o := NewObjectStore(storage, "")

	got, err := o.Deliver(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if storage.path != "shared-images/ai-generated-1.png" {
		t.Errorf("path = %s", storage.path)
	}
	if storage.contentType != "image/png" {
		t.Errorf("content type = %s", storage.contentType)
	}
	if got.Location != "https://cdn.example.com/shared-images/ai-generated-1.png" {
		t.Errorf("location = %s", got.Location)
	}
	if got.Message != imagestudio.MsgShared {
		t.Errorf("message = %q", got.Message)
	}
}

func TestObjectStore_Unavailable(t *testing.T) {
	if NewObjectStore(nil, "").Available() {
		t.Error("nil storage should be unavailable")
	}
}

func TestObjectStore_Error(t *testing.T) {
	boom := errors.New("boom")
	o := NewObjectStore(&mockStorage{err: boom}, "p")

	if _, err := o.Deliver(context.Background(), testPayload()); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestClipboard_NoTool(t *testing.T) {
	c := &Clipboard{
		lookPath: func(string) (string, error) { return "", exec.ErrNotFound },
		command:  exec.CommandContext,
	}

	if c.Available() {
		t.Error("expected clipboard to be unavailable")
	}
	if _, err := c.Deliver(context.Background(), testPayload()); !errors.Is(err, imagestudio.ErrShareUnsupported) {
		t.Errorf("expected ErrShareUnsupported, got %v", err)
	}
}

func TestClipboard_PicksFirstTool(t *testing.T) {
	var ran []string
	c := &Clipboard{
		lookPath: func(name string) (string, error) {
			if name == "xclip" {
				return "/usr/bin/xclip", nil
			}
			return "", exec.ErrNotFound
		},
		command: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			ran = append([]string{name}, args...)
			return exec.CommandContext(ctx, "true")
		},
	}

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	got, err := c.Deliver(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got.Message != imagestudio.MsgCopied {
		t.Errorf("message = %q", got.Message)
	}

	want := []string{"/usr/bin/xclip", "-selection", "clipboard", "-t", "image/png"}
	if len(ran) != len(want) {
		t.Fatalf("ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Errorf("arg %d = %s, want %s", i, ran[i], want[i])
		}
	}
}
