package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCaption_Success(t *testing.T) {
	var gotSystem, gotUser string
	llm := &completerStub{fn: func(_ context.Context, system, user string) (string, error) {
		gotSystem = system
		gotUser = user
		return "Golden hour supervisor. #cat #sunset", nil
	}}

	out, err := NewCaptionGenerator(llm).Generate(context.Background(), "a cat on a rooftop at sunset")
	require.NoError(t, err)
	assert.Equal(t, "Golden hour supervisor. #cat #sunset", out)
	assert.Equal(t, "a cat on a rooftop at sunset", gotUser)
	assert.Contains(t, gotSystem, "Instagram caption")
	assert.Contains(t, gotSystem, "Output only the caption")
}

func TestGenerateCaption_NormalizesAndTruncates(t *testing.T) {
	llm := &completerStub{fn: func(_ context.Context, _, _ string) (string, error) {
		return "  too   many\nspaces " + strings.Repeat("y", 600), nil
	}}

	out, err := NewCaptionGenerator(llm).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out)), MaxCaptionLen)
	assert.True(t, strings.HasPrefix(out, "too many spaces"))
}

func TestGenerateCaption_EmptyPromptRejected(t *testing.T) {
	llm := &completerStub{fn: func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("remote capability must not be called without a prompt")
		return "", nil
	}}

	_, err := NewCaptionGenerator(llm).Generate(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerateCaption_EmptyCompletionFails(t *testing.T) {
	llm := &completerStub{fn: func(_ context.Context, _, _ string) (string, error) {
		return "", nil
	}}

	_, err := NewCaptionGenerator(llm).Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "empty")
}

func TestGenerateCaption_RemoteFailurePropagates(t *testing.T) {
	llm := &completerStub{fn: func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("remote API returned HTTP 500")
	}}

	_, err := NewCaptionGenerator(llm).Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "HTTP 500")
}
