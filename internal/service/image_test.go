package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageURLPattern = regexp.MustCompile(`^/uploads/\d+_[0-9a-f]{8}\.png$`)

// imageAPIStub is an ImageSynthesizer backed by functions.
type imageAPIStub struct {
	generateFn func(ctx context.Context, prompt, size string) ([]byte, error)
	editFn     func(ctx context.Context, prompt, imageDataURL, size string) ([]byte, error)
}

func (s *imageAPIStub) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	return s.generateFn(ctx, prompt, size)
}

func (s *imageAPIStub) EditImage(ctx context.Context, prompt, imageDataURL, size string) ([]byte, error) {
	return s.editFn(ctx, prompt, imageDataURL, size)
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff})
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestGenerate_SavesImageWithPrefix(t *testing.T) {
	dir := t.TempDir()
	payload := tinyPNG(t)

	var gotPrompt, gotSize string
	api := &imageAPIStub{generateFn: func(_ context.Context, prompt, size string) ([]byte, error) {
		gotPrompt = prompt
		gotSize = size
		return payload, nil
	}}

	g := NewImageGenerator(api, dir, fixedRand{hex: "deadbeef"}, nil)
	imageURL, thumbURL, err := g.Generate(context.Background(), "a cat on a rooftop")
	require.NoError(t, err)

	assert.Regexp(t, imageURLPattern, imageURL)
	assert.Equal(t, "Photorealistic Instagram-style photo. a cat on a rooftop", gotPrompt)
	assert.Equal(t, ImageSize, gotSize)

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(imageURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, payload, saved)

	// Thumbnail is best-effort; for a decodable PNG it should exist.
	require.NotEmpty(t, thumbURL)
	assert.True(t, strings.HasSuffix(thumbURL, "_thumb.webp"))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(thumbURL, "/uploads/")))
	assert.NoError(t, err)
}

func TestGenerate_UndecodableImageSkipsThumbnail(t *testing.T) {
	dir := t.TempDir()
	api := &imageAPIStub{generateFn: func(_ context.Context, _, _ string) ([]byte, error) {
		return []byte("not an image"), nil
	}}

	g := NewImageGenerator(api, dir, fixedRand{hex: "deadbeef"}, nil)
	imageURL, thumbURL, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Regexp(t, imageURLPattern, imageURL)
	assert.Empty(t, thumbURL)
}

func TestGenerate_RemoteFailure(t *testing.T) {
	api := &imageAPIStub{generateFn: func(_ context.Context, _, _ string) ([]byte, error) {
		return nil, errors.New("image response contained no image data")
	}}

	g := NewImageGenerator(api, t.TempDir(), fixedRand{hex: "deadbeef"}, nil)
	_, _, err := g.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no image data")
}

func TestGenerateWithReference_UsesDeclaredMIME(t *testing.T) {
	var gotDataURL, gotPrompt string
	api := &imageAPIStub{editFn: func(_ context.Context, prompt, imageDataURL, _ string) ([]byte, error) {
		gotPrompt = prompt
		gotDataURL = imageDataURL
		return tinyPNG(t), nil
	}}

	g := NewImageGenerator(api, t.TempDir(), fixedRand{hex: "deadbeef"}, nil)
	ref := ReferenceImage{
		Filename:    "me.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("jpeg bytes"),
	}
	imageURL, _, err := g.GenerateWithReference(context.Background(), "me at the beach", ref)
	require.NoError(t, err)
	assert.Regexp(t, imageURLPattern, imageURL)
	assert.True(t, strings.HasPrefix(gotDataURL, "data:image/jpeg;base64,"))
	assert.Contains(t, gotPrompt, "identity and style anchor")
	assert.True(t, strings.HasSuffix(gotPrompt, "me at the beach"))
}

func TestReferenceImage_DataURLSniffsMissingMIME(t *testing.T) {
	ref := ReferenceImage{Content: tinyPNG(t)}
	assert.True(t, strings.HasPrefix(ref.DataURL(), "data:image/png;base64,"))
}
