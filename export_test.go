package imagestudio

import (
	"context"
	"errors"
	"testing"
)

func TestSinkChain_FallsThrough(t *testing.T) {
	share := &mockSink{name: "share", available: true, err: errors.New("cancelled")}
	clipboard := &mockSink{name: "clipboard", available: true, message: MsgCopied}

	d, err := SinkChain{share, clipboard}.Deliver(context.Background(), Payload{Filename: "a.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Sink != "clipboard" || d.Message != MsgCopied {
		t.Errorf("unexpected delivery: %+v", d)
	}
	if len(clipboard.delivered) != 1 {
		t.Errorf("clipboard should have received the payload")
	}
}

func TestSinkChain_SkipsUnavailable(t *testing.T) {
	unavailable := &mockSink{name: "share", available: false}
	dir := &mockSink{name: "dir", available: true}

	d, err := SinkChain{nil, unavailable, dir}.Deliver(context.Background(), Payload{Filename: "a.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Sink != "dir" || len(unavailable.delivered) != 0 {
		t.Errorf("unexpected delivery: %+v", d)
	}
}

func TestSinkChain_NothingWorks(t *testing.T) {
	boom := errors.New("no clipboard tool")
	chain := SinkChain{
		&mockSink{name: "share", available: false},
		&mockSink{name: "clipboard", available: true, err: boom},
	}

	_, err := chain.Deliver(context.Background(), Payload{})
	if !errors.Is(err, ErrShareUnsupported) {
		t.Errorf("expected ErrShareUnsupported, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected sink error to be carried, got %v", err)
	}
}

func TestPayloadFor(t *testing.T) {
	img := testImage(3)
	p, err := PayloadFor(img)
	if err != nil {
		t.Fatalf("PayloadFor: %v", err)
	}
	if p.Filename != "ai-generated-img-3.png" {
		t.Errorf("Filename = %q", p.Filename)
	}
	if string(p.Data) != "ABC" {
		t.Errorf("Data = %q, want decoded payload", p.Data)
	}

	img.ImageData = "%%%"
	if _, err := PayloadFor(img); err == nil {
		t.Error("expected decode error for invalid base64")
	}
}
