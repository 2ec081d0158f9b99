package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder for thumbnailing
	_ "image/png"  // register PNG decoder for thumbnailing
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"driftgram/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ImageSize is the fixed resolution requested from the remote model.
	ImageSize = "1024x1024"

	noReferencePrefix = "Photorealistic Instagram-style photo. "
	referencePrefix   = "Photorealistic Instagram-style photo. Use the attached reference image as the " +
		"identity and style anchor for the person in the scene. "

	thumbMaxSize = 512
	thumbQuality = 70
)

// ImageSynthesizer is the remote image-generation capability.
type ImageSynthesizer interface {
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
	EditImage(ctx context.Context, prompt, imageDataURL, size string) ([]byte, error)
}

// ReferenceImage is one uploaded reference payload. It conditions a single
// generation call and is never persisted itself.
type ReferenceImage struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DataURL encodes the reference as a data URL using its declared MIME
// type, sniffing the content when no type was declared.
func (r ReferenceImage) DataURL() string {
	mimeType := strings.TrimSpace(r.ContentType)
	if mimeType == "" {
		mimeType = http.DetectContentType(r.Content)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(r.Content))
}

// ImageGenerator produces a post image via the remote model and saves it
// to local storage. Remote calls are not retried; a response without image
// data is a hard failure.
type ImageGenerator struct {
	api       ImageSynthesizer
	uploadDir string
	rng       Rand
	logger    *slog.Logger
}

// NewImageGenerator creates an ImageGenerator writing into uploadDir.
func NewImageGenerator(api ImageSynthesizer, uploadDir string, rng Rand, logger *slog.Logger) *ImageGenerator {
	if rng == nil {
		rng = SystemRand()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageGenerator{api: api, uploadDir: uploadDir, rng: rng, logger: logger}
}

// Generate synthesizes an image from the prompt alone and returns the
// relative URL of the saved file plus a best-effort thumbnail URL.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, string, error) {
	span, ctx := observability.NewSpan(ctx, "service.GenerateImage")
	defer span.End()

	raw, err := g.api.GenerateImage(ctx, noReferencePrefix+prompt, ImageSize)
	if err != nil {
		span.SetError(err)
		return "", "", fmt.Errorf("generate image: %w", err)
	}
	return g.save(raw)
}

// GenerateWithReference synthesizes an image conditioned on one reference.
// Callers pass exactly one reference; when a request carries several
// uploads only the first reaches this method (explicit policy, see the
// post assembly service).
func (g *ImageGenerator) GenerateWithReference(ctx context.Context, prompt string, ref ReferenceImage) (string, string, error) {
	span, ctx := observability.NewSpan(ctx, "service.GenerateImageWithReference")
	defer span.End()

	raw, err := g.api.EditImage(ctx, referencePrefix+prompt, ref.DataURL(), ImageSize)
	if err != nil {
		span.SetError(err)
		return "", "", fmt.Errorf("generate image from reference: %w", err)
	}
	return g.save(raw)
}

// save writes the binary to local storage under a timestamp+random-hex
// name and returns its relative URL. Thumbnail generation failures only
// log; the main image is already on disk.
func (g *ImageGenerator) save(raw []byte) (string, string, error) {
	if err := os.MkdirAll(g.uploadDir, 0o750); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s.png", time.Now().UnixMilli(), g.rng.Hex(4))
	if err := os.WriteFile(filepath.Join(g.uploadDir, name), raw, 0o600); err != nil {
		return "", "", fmt.Errorf("write image file: %w", err)
	}

	thumbURL := ""
	thumbName := strings.TrimSuffix(name, ".png") + "_thumb.webp"
	if err := g.writeThumbnail(raw, filepath.Join(g.uploadDir, thumbName)); err != nil {
		g.logger.Warn("thumbnail generation failed",
			slog.String("image", name),
			slog.String("error", err.Error()))
	} else {
		thumbURL = "/uploads/" + thumbName
	}

	return "/uploads/" + name, thumbURL, nil
}

func (g *ImageGenerator) writeThumbnail(raw []byte, path string) error {
	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode generated image: %w", err)
	}

	thumb := resizeToFit(decoded, thumbMaxSize, thumbMaxSize)
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, thumb, &webp.Options{Quality: thumbQuality}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
