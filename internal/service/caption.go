package service

import (
	"context"
	"errors"
	"fmt"

	"driftgram/internal/observability"
)

const captionInstruction = "Write a short Instagram caption for the described photo: 1-2 sentences, " +
	"up to 5 hashtags. Output only the caption."

// CaptionGenerator asks the text model for a short caption for a prompt.
type CaptionGenerator struct {
	llm TextCompleter
}

// NewCaptionGenerator creates a CaptionGenerator.
func NewCaptionGenerator(llm TextCompleter) *CaptionGenerator {
	return &CaptionGenerator{llm: llm}
}

// Generate returns a normalized caption for the resolved prompt. An empty
// completion is a failure; nothing is retried.
func (g *CaptionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	span, ctx := observability.NewSpan(ctx, "service.GenerateCaption")
	defer span.End()

	if prompt == "" {
		return "", errors.New("caption generation requires a prompt")
	}

	raw, err := g.llm.Complete(ctx, captionInstruction, prompt)
	if err != nil {
		span.SetError(err)
		return "", fmt.Errorf("generate caption: %w", err)
	}

	caption := normalizeText(raw, MaxCaptionLen)
	if caption == "" {
		err := errors.New("caption generation returned an empty completion")
		span.SetError(err)
		return "", err
	}
	return caption, nil
}
