package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mhpenta/imagestudio"
)

const helpText = `Commands:
  <prompt>               generate an image (same as: generate <prompt>)
  generate <prompt>      generate an image
  again                  regenerate the current prompt
  style [name]           show styles or pick one ("none" clears it)
  size [label]           show sizes or pick one
  list                   show the gallery
  view <n>               show gallery entry n
  save                   save the current image
  saved                  list saved images
  download               write the current image to the download directory
  share                  share the current image
  clear                  clear the gallery
  help                   show this help
  quit                   exit`

var sizeChoices = []imagestudio.Size{
	imagestudio.SizeClientDefault,
	"768x512",
	"512x768",
	"1024x1024",
}

// session is one interactive terminal session.
type session struct {
	ctrl    *imagestudio.Controller
	in      *bufio.Scanner
	out     io.Writer
	style   imagestudio.Style
	size    imagestudio.Size
	timeout time.Duration
}

func newSession(ctrl *imagestudio.Controller, in io.Reader, out io.Writer) *session {
	return &session{
		ctrl:    ctrl,
		in:      bufio.NewScanner(in),
		out:     out,
		size:    imagestudio.SizeClientDefault,
		timeout: 2 * time.Minute,
	}
}

// run reads commands until quit, EOF or ctx is done.
func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, `imagestudio - type a prompt, or "help"`)

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if !s.exec(ctx, line) {
			return nil
		}
	}
}

// exec runs one command line. It returns false on quit.
func (s *session) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return false
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "generate", "gen":
		s.generate(ctx, arg)
	case "again":
		s.withTimeout(ctx, func(ctx context.Context) {
			if img, err := s.ctrl.Regenerate(ctx); err == nil {
				s.showCurrent(img)
			}
		})
	case "style":
		s.setStyle(arg)
	case "size":
		s.setSize(arg)
	case "list", "gallery":
		s.showGallery(s.ctrl.Gallery().Summaries())
	case "view":
		s.view(arg)
	case "save":
		_ = s.ctrl.SaveCurrent(ctx)
	case "saved":
		s.showSaved()
	case "download":
		if d, err := s.ctrl.Download(ctx); err == nil {
			fmt.Fprintf(s.out, "  %s\n", d.Location)
		}
	case "share":
		if d, err := s.ctrl.Share(ctx); err == nil && d.Location != "" {
			fmt.Fprintf(s.out, "  %s\n", d.Location)
		}
	case "clear":
		if s.confirm("Are you sure you want to clear all images from the gallery?") {
			s.ctrl.ClearGallery()
		}
	default:
		s.generate(ctx, line)
	}
	return true
}

func (s *session) generate(ctx context.Context, prompt string) {
	s.withTimeout(ctx, func(ctx context.Context) {
		img, err := s.ctrl.Generate(ctx, prompt, &imagestudio.GenerateConfig{
			Style: s.style,
			Size:  s.size,
		})
		if err == nil {
			s.showCurrent(img)
		}
	})
}

func (s *session) withTimeout(ctx context.Context, fn func(context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	fn(ctx)
}

func (s *session) setStyle(arg string) {
	if arg == "" {
		fmt.Fprintf(s.out, "  current: %s\n", displayStyle(s.style))
		for _, st := range imagestudio.Styles() {
			fmt.Fprintf(s.out, "  - %s\n", st)
		}
		return
	}
	if strings.EqualFold(arg, "none") || strings.EqualFold(arg, "default") {
		s.style = imagestudio.StyleDefault
		fmt.Fprintln(s.out, "  style cleared")
		return
	}
	for _, st := range imagestudio.Styles() {
		if strings.EqualFold(arg, string(st)) {
			s.style = st
			fmt.Fprintf(s.out, "  style: %s\n", st)
			return
		}
	}
	fmt.Fprintf(s.out, "  unknown style %q\n", arg)
}

func (s *session) setSize(arg string) {
	if arg == "" {
		fmt.Fprintf(s.out, "  current: %s\n", s.size)
		for _, sz := range sizeChoices {
			w, h := sz.Dimensions()
			fmt.Fprintf(s.out, "  - %s (%dx%d)\n", sz, w, h)
		}
		return
	}
	s.size = imagestudio.Size(arg)
	w, h := s.size.Dimensions()
	fmt.Fprintf(s.out, "  size: %s (%dx%d)\n", s.size, w, h)
}

func (s *session) view(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(s.out, "  usage: view <n>")
		return
	}
	img, ok := s.ctrl.Select(n - 1)
	if !ok {
		fmt.Fprintf(s.out, "  no gallery entry %d\n", n)
		return
	}
	s.showCurrent(img)
}

func (s *session) showCurrent(img imagestudio.GeneratedImage) {
	fmt.Fprintf(s.out, "  current: %s\n", img.Prompt)
	fmt.Fprintf(s.out, "  id %s, %s, %d base64 bytes\n", img.ID, img.CreatedAt.Format(time.Kitchen), len(img.ImageData))
}

func (s *session) showGallery(summaries []imagestudio.GallerySummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(s.out, "  No images generated yet. Create your first masterpiece!")
		return
	}
	for _, sum := range summaries {
		fmt.Fprintf(s.out, "  [%d] %s\n", sum.Index+1, sum.TruncatedPrompt)
	}
}

func (s *session) showSaved() {
	saved := s.ctrl.Saved().List()
	if len(saved) == 0 {
		fmt.Fprintln(s.out, "  no saved images")
		return
	}
	for i, img := range saved {
		fmt.Fprintf(s.out, "  %d. %s (%s)\n", i+1, img.Prompt, img.ID)
	}
}

func (s *session) confirm(question string) bool {
	fmt.Fprintf(s.out, "  %s [y/N] ", question)
	if !s.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

func displayStyle(st imagestudio.Style) string {
	if st == imagestudio.StyleDefault {
		return "none"
	}
	return string(st)
}

// terminalNotifier prints notifications on their own line.
type terminalNotifier struct {
	out io.Writer
}

func (t terminalNotifier) Notify(n imagestudio.Notification) {
	mark := "*"
	switch n.Level {
	case imagestudio.LevelSuccess:
		mark = "+"
	case imagestudio.LevelError:
		mark = "!"
	}
	fmt.Fprintf(t.out, "%s %s\n", mark, n.Message)
}
