// Package generator turns a text prompt into a puzzle document.
package generator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Generator produces a puzzle document for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (puzzle.Document, error)
}

// Fallback is the deterministic local generator. It never fails.
type Fallback struct{}

// Generate picks a canned shape by keyword.
func (Fallback) Generate(_ context.Context, prompt string) (puzzle.Document, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "circle") || strings.Contains(lower, "round"):
		return closedShape("CIRCLE", "Shapes", []puzzle.Dot{
			{X: 280, Y: 210}, {X: 320, Y: 210}, {X: 350, Y: 240}, {X: 350, Y: 280},
			{X: 320, Y: 310}, {X: 280, Y: 310}, {X: 250, Y: 280}, {X: 250, Y: 240},
		}), nil
	case strings.Contains(lower, "star"):
		return closedShape("STAR", "Shapes", []puzzle.Dot{
			{X: 280, Y: 200}, {X: 300, Y: 240}, {X: 340, Y: 240}, {X: 310, Y: 270},
			{X: 320, Y: 310}, {X: 280, Y: 290}, {X: 240, Y: 310}, {X: 250, Y: 270},
			{X: 220, Y: 240}, {X: 260, Y: 240},
		}), nil
	}
	return closedShape(fallbackName(prompt), "Custom", []puzzle.Dot{
		{X: 200, Y: 200}, {X: 300, Y: 200}, {X: 300, Y: 300}, {X: 200, Y: 300},
	}), nil
}

func fallbackName(prompt string) string {
	runes := []rune(strings.ToUpper(strings.TrimSpace(prompt)))
	if len(runes) > 10 {
		runes = runes[:10]
	}
	name := strings.TrimSpace(string(runes))
	if name == "" {
		return "SQUARE"
	}
	return name
}

// closedShape connects dots in order and back to the first.
func closedShape(name, category string, dots []puzzle.Dot) puzzle.Document {
	seq := make([]puzzle.Edge, len(dots))
	for i := range dots {
		seq[i] = puzzle.Edge{From: i, To: (i + 1) % len(dots)}
	}
	return puzzle.Document{Name: name, CategoryName: category, Dots: dots, Sequence: seq}
}

// Source names where a generated document came from.
type Source string

// Generation sources.
const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result is a generated document and its origin.
type Result struct {
	Document puzzle.Document
	Source   Source
	// RemoteErr is the remote failure that triggered the fallback, if any.
	RemoteErr error
}

// Assistant tries a remote generator and falls back to the local one.
type Assistant struct {
	remote   Generator
	fallback Generator
	logger   zerolog.Logger
}

// NewAssistant builds an assistant. A nil remote always uses the fallback.
func NewAssistant(remote Generator, logger zerolog.Logger) *Assistant {
	return &Assistant{remote: remote, fallback: Fallback{}, logger: logger}
}

// Generate never returns an error for a non-empty prompt: remote failures
// are logged and replaced by the fallback shape.
func (a *Assistant) Generate(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, ErrEmptyPrompt
	}
	var remoteErr error
	if a.remote != nil {
		doc, err := a.remote.Generate(ctx, prompt)
		if err == nil {
			a.logger.Info().Str("name", doc.Name).Int("dots", len(doc.Dots)).Msg("generated puzzle")
			return Result{Document: doc, Source: SourceRemote}, nil
		}
		remoteErr = err
		a.logger.Warn().Err(err).Str("prompt", prompt).Msg("remote generation failed, using fallback")
	}
	doc, err := a.fallback.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	return Result{Document: doc, Source: SourceFallback, RemoteErr: remoteErr}, nil
}
