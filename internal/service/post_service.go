package service

import (
	"context"
	"time"

	"driftgram/internal/models"
	"driftgram/internal/observability"

	"github.com/google/uuid"
)

// Upper bounds (exclusive) for the randomized cosmetic stats.
const (
	maxRandomLikes    = 5000
	maxRandomComments = 500
)

// PromptSource produces an auto-generated prompt when the caller supplies none.
type PromptSource interface {
	Synthesize(ctx context.Context) (string, error)
}

// CaptionSource produces a caption for a resolved prompt.
type CaptionSource interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageSource produces the post image, with or without a reference.
type ImageSource interface {
	Generate(ctx context.Context, prompt string) (imageURL, thumbURL string, err error)
	GenerateWithReference(ctx context.Context, prompt string, ref ReferenceImage) (imageURL, thumbURL string, err error)
}

// PostStore persists assembled posts.
type PostStore interface {
	Append(post models.Post) error
	ReadAllSorted() []models.Post
}

// CreatePostInput is one creation request. References beyond the first are
// accepted but ignored.
type CreatePostInput struct {
	Prompt     string
	References []ReferenceImage
}

// PostService orchestrates prompt resolution, caption and image
// generation, and persistence for one post. Remote calls run sequentially
// within a request: caption first, then image. Any failure before the
// final append aborts the whole operation with nothing persisted.
type PostService struct {
	store    PostStore
	prompts  PromptSource
	captions CaptionSource
	images   ImageSource
	rng      Rand
}

// NewPostService creates a PostService.
func NewPostService(store PostStore, prompts PromptSource, captions CaptionSource, images ImageSource, rng Rand) *PostService {
	if rng == nil {
		rng = SystemRand()
	}
	return &PostService{
		store:    store,
		prompts:  prompts,
		captions: captions,
		images:   images,
		rng:      rng,
	}
}

// CreatePost builds one post and appends it to the store.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "service.CreatePost")
	defer span.End()

	prompt := normalizeText(in.Prompt, MaxPromptLen)
	if prompt == "" {
		synthesized, err := s.prompts.Synthesize(ctx)
		if err != nil {
			span.SetError(err)
			observability.GenerationFailures.WithLabelValues(observability.StagePrompt).Inc()
			return nil, models.NewGenerationError(err)
		}
		prompt = synthesized
	}

	caption, err := s.captions.Generate(ctx, prompt)
	if err != nil {
		span.SetError(err)
		observability.GenerationFailures.WithLabelValues(observability.StageCaption).Inc()
		return nil, models.NewGenerationError(err)
	}

	var imageURL, thumbURL string
	if len(in.References) > 0 {
		// Only the first reference conditions the image; extra uploads are
		// accepted without error and ignored.
		imageURL, thumbURL, err = s.images.GenerateWithReference(ctx, prompt, in.References[0])
	} else {
		imageURL, thumbURL, err = s.images.Generate(ctx, prompt)
	}
	if err != nil {
		span.SetError(err)
		observability.GenerationFailures.WithLabelValues(observability.StageImage).Inc()
		return nil, models.NewGenerationError(err)
	}

	post := models.Post{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UnixMilli(),
		Prompt:    prompt,
		Caption:   caption,
		ImageURL:  imageURL,
		ThumbURL:  thumbURL,
		User:      models.DefaultAuthor,
		Stats: models.Stats{
			Likes:    s.rng.IntN(maxRandomLikes),
			Comments: s.rng.IntN(maxRandomComments),
		},
	}

	if err := s.store.Append(post); err != nil {
		span.SetError(err)
		observability.GenerationFailures.WithLabelValues(observability.StageStore).Inc()
		return nil, models.NewInternalError(err)
	}

	observability.PostsGenerated.Inc()
	return &post, nil
}

// ListPosts returns all posts ordered newest first. Order is applied at
// read time; the store itself is unordered.
func (s *PostService) ListPosts() []models.Post {
	return s.store.ReadAllSorted()
}
