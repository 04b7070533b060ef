package sink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/mhpenta/imagestudio"
)

// clipboardTool is a command that reads an image from stdin into the
// system clipboard.
type clipboardTool struct {
	name string
	args func(mimeType string) []string
}

var clipboardTools = []clipboardTool{
	{name: "wl-copy", args: func(mime string) []string { return []string{"--type", mime} }},
	{name: "xclip", args: func(mime string) []string { return []string{"-selection", "clipboard", "-t", mime} }},
	{name: "pbcopy", args: func(string) []string { return nil }},
}

// Clipboard copies the image bytes to the system clipboard using the first
// clipboard tool found on PATH.
type Clipboard struct {
	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

var _ imagestudio.Sink = (*Clipboard)(nil)

func NewClipboard() *Clipboard {
	return &Clipboard{
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Available() bool {
	_, _, ok := c.tool()
	return ok
}

func (c *Clipboard) Deliver(ctx context.Context, p imagestudio.Payload) (imagestudio.Delivery, error) {
	tool, path, ok := c.tool()
	if !ok {
		return imagestudio.Delivery{}, imagestudio.ErrShareUnsupported
	}

	var stderr bytes.Buffer
	cmd := c.command(ctx, path, tool.args(p.MIMEType)...)
	cmd.Stdin = bytes.NewReader(p.Data)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return imagestudio.Delivery{}, fmt.Errorf("%s failed: %w: %s", tool.name, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return imagestudio.Delivery{
		Sink:    c.Name(),
		Message: imagestudio.MsgCopied,
	}, nil
}

func (c *Clipboard) tool() (clipboardTool, string, bool) {
	for _, t := range clipboardTools {
		if path, err := c.lookPath(t.name); err == nil {
			return t, path, true
		}
	}
	return clipboardTool{}, "", false
}
