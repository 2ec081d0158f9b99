// Package service implements the post generation pipeline: prompt
// synthesis, caption generation, image generation, and post assembly.
package service

import (
	"context"
	"errors"
	"fmt"

	"driftgram/internal/observability"
)

// TextCompleter is the remote text-generation capability consumed by the
// prompt synthesizer and caption generator.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Fixed vocabulary for the randomized scene seed. One entry is picked
// uniformly from each list and rewritten by the text model into a single
// natural-language image prompt.
var (
	seedActivities = []string{
		"sipping an iced coffee at a sidewalk table",
		"stretching after a morning run",
		"browsing a flea market stall",
		"waiting for a train on an open platform",
		"reading a paperback in a window seat",
		"walking a small dog through puddles",
		"carrying a bouquet wrapped in brown paper",
		"laughing mid-bite over street food",
		"leaning on a rented bike at a crosswalk",
		"people-watching from a rooftop bench",
		"picking records from a crate",
		"feeding pigeons near a fountain",
	}
	seedLocations = []string{
		"sun-washed old town alley",
		"rainy neon-lit shopping street",
		"quiet beach boardwalk at dusk",
		"crowded weekend farmers market",
		"autumn park with fallen leaves",
		"rooftop terrace over a hazy skyline",
		"retro diner with checkered floors",
		"underground metro passage",
		"botanical greenhouse full of ferns",
		"foggy harbor pier in the morning",
		"small-town main street at golden hour",
		"snow-dusted residential side street",
	}
	seedCameraFeels = []string{
		"slightly overexposed front camera",
		"grainy low-light handheld shot",
		"harsh midday sun with deep shadows",
		"soft golden-hour backlight",
		"motion-blurred candid angle",
		"close-up with smudged lens flare",
		"wide selfie arm distortion at the edge",
		"cloudy flat light with muted colors",
		"warm indoor tungsten glow",
		"off-center tilted framing",
	}
)

const synthesizerInstruction = "You turn a scene seed into exactly one sentence describing a photorealistic, amateur phone selfie. " +
	"Output only that single sentence. Do not reference any brands or celebrities. " +
	"If a reference image is provided, treat the face in it as the identity anchor, never the background."

// PromptSynthesizer builds a randomized scene seed and asks the text model
// to rewrite it into one natural-language image prompt. It is used only
// when the caller supplies no usable prompt.
type PromptSynthesizer struct {
	llm TextCompleter
	rng Rand
}

// NewPromptSynthesizer creates a PromptSynthesizer.
func NewPromptSynthesizer(llm TextCompleter, rng Rand) *PromptSynthesizer {
	if rng == nil {
		rng = SystemRand()
	}
	return &PromptSynthesizer{llm: llm, rng: rng}
}

// Synthesize produces one auto-generated image prompt. A remote failure or
// an empty completion propagates to the caller; there is no local fallback
// prompt.
func (p *PromptSynthesizer) Synthesize(ctx context.Context) (string, error) {
	span, ctx := observability.NewSpan(ctx, "service.SynthesizePrompt")
	defer span.End()

	seed := p.buildSeed()
	raw, err := p.llm.Complete(ctx, synthesizerInstruction, seed)
	if err != nil {
		span.SetError(err)
		return "", fmt.Errorf("synthesize prompt: %w", err)
	}

	prompt := normalizeText(raw, MaxSynthLen)
	if prompt == "" {
		err := errors.New("prompt synthesis returned an empty completion")
		span.SetError(err)
		return "", err
	}
	return prompt, nil
}

func (p *PromptSynthesizer) buildSeed() string {
	activity := seedActivities[p.rng.IntN(len(seedActivities))]
	location := seedLocations[p.rng.IntN(len(seedLocations))]
	camera := seedCameraFeels[p.rng.IntN(len(seedCameraFeels))]
	return fmt.Sprintf("Scene seed: %s. Location vibe: %s. Camera: %s.", activity, location, camera)
}
