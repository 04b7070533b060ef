package imagestudio

import (
	"context"
	"errors"
	"fmt"
)

// Payload is an image handed to an export sink.
type Payload struct {
	Filename string
	MIMEType string
	Data     []byte

	// Title and Text accompany native shares.
	Title string
	Text  string
}

// PayloadFor builds the export payload for img.
func PayloadFor(img GeneratedImage) (Payload, error) {
	data, err := img.Bytes()
	if err != nil {
		return Payload{}, err
	}
	mime := img.MIMEType
	if mime == "" {
		mime = DefaultMIMEType
	}
	return Payload{
		Filename: img.Filename(),
		MIMEType: mime,
		Data:     data,
		Title:    "AI Generated Image",
		Text:     fmt.Sprintf("Check out this AI-generated image: %q", img.Prompt),
	}, nil
}

// Delivery describes where a sink put the image.
type Delivery struct {
	Sink     string
	Location string // file path, URL, or empty for the clipboard
	Message  string // user-facing confirmation
}

// Sink is a best-effort destination for an image: a download directory,
// a share target, the clipboard.
type Sink interface {
	Name() string

	// Available reports whether the capability exists on this machine.
	Available() bool

	Deliver(ctx context.Context, p Payload) (Delivery, error)
}

// SinkChain tries sinks in order. Unavailable sinks are skipped and a
// failing sink falls through to the next one.
type SinkChain []Sink

// Deliver returns the first successful delivery. When no sink succeeds the
// error matches ErrShareUnsupported and carries each sink's failure.
func (c SinkChain) Deliver(ctx context.Context, p Payload) (Delivery, error) {
	errs := []error{ErrShareUnsupported}
	for _, s := range c {
		if s == nil || !s.Available() {
			continue
		}
		d, err := s.Deliver(ctx, p)
		if err == nil {
			if d.Sink == "" {
				d.Sink = s.Name()
			}
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return Delivery{}, errors.Join(errs...)
}
