package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// MarkdownRenderer turns message content into terminal output
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// glamourRenderer caches one glamour renderer per wrap width, since
// building a renderer is the expensive part.
type glamourRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer returns a glamour backed renderer, or the plain text
// renderer when markdown is disabled.
func NewMarkdownRenderer(enabled bool) MarkdownRenderer {
	if !enabled {
		return plainRenderer{}
	}
	return &glamourRenderer{style: "auto"}
}

func (g *glamourRenderer) Render(content string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	if g.renderer == nil || g.width != width {
		start := time.Now()
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if g.style == "auto" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(g.style))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return "", err
		}
		g.renderer = r
		g.width = width
		slog.Debug("[TIMING] Markdown renderer initialized", "load time", time.Since(start), "width", width)
	}

	out, err := g.renderer.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

type plainRenderer struct{}

func (plainRenderer) Render(content string, width int) (string, error) {
	return renderPlainText(content, width), nil
}

func renderPlainText(content string, width int) string {
	if width <= 0 {
		return content
	}
	return wordwrap.String(content, width)
}
