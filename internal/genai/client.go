// Package genai is a thin client for an OpenAI-compatible generation API.
// It exposes the two capabilities the application consumes: free-form text
// completion and image synthesis/editing. Calls are not retried; the HTTP
// client timeout is the only bound on a remote call.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"driftgram/internal/config"
	"driftgram/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Client talks to the remote generation capability. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
}

// NewClient creates a Client from application configuration.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.RemoteTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Image          string `json:"image,omitempty"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Complete sends a system instruction and user content to the text model
// and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	span, ctx := observability.NewSpan(ctx, "genai.Complete")
	defer span.End()
	span.AddAttributes(attribute.String("genai.model", c.textModel))

	body, err := c.post(ctx, "/v1/chat/completions", "chat_completion", chatRequest{
		Model: c.textModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		span.SetError(err)
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		span.SetError(err)
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		err := errors.New("completion response contained no choices")
		span.SetError(err)
		return "", err
	}
	return parsed.Choices[0].Message.Content, nil
}

// GenerateImage asks the image model to synthesize one image from the
// prompt at the given size and returns the decoded binary.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	span, ctx := observability.NewSpan(ctx, "genai.GenerateImage")
	defer span.End()
	span.AddAttributes(attribute.String("genai.model", c.imageModel))

	body, err := c.post(ctx, "/v1/images/generations", "image_generation", imageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	img, err := decodeImagePayload(body)
	if err != nil {
		span.SetError(err)
	}
	return img, err
}

// EditImage asks the image model to produce one image conditioned on the
// reference, supplied as a data URL with its declared MIME type.
func (c *Client) EditImage(ctx context.Context, prompt, imageDataURL, size string) ([]byte, error) {
	span, ctx := observability.NewSpan(ctx, "genai.EditImage")
	defer span.End()
	span.AddAttributes(attribute.String("genai.model", c.imageModel))

	body, err := c.post(ctx, "/v1/images/edits", "image_edit", imageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		Image:          imageDataURL,
		N:              1,
		Size:           size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	img, err := decodeImagePayload(body)
	if err != nil {
		span.SetError(err)
	}
	return img, err
}

func (c *Client) post(ctx context.Context, path, operation string, payload any) ([]byte, error) {
	start := time.Now()
	defer func() {
		observability.RemoteCallLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, extractAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// decodeImagePayload extracts and decodes the base64 image from an image
// endpoint response. A response without image data is a hard failure.
func decodeImagePayload(body []byte) ([]byte, error) {
	var parsed imageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, errors.New("image response contained no image data")
	}
	raw, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image payload: %w", err)
	}
	return raw, nil
}

// extractAPIError pulls the best available message out of a non-success
// response body. The lookup is an ordered fallback chain: the nested
// error.message field, then a top-level message, then a generic status
// line.
func extractAPIError(status int, body []byte) error {
	var shape struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &shape); err == nil {
		if shape.Error != nil && shape.Error.Message != "" {
			return fmt.Errorf("remote API error: %s", shape.Error.Message)
		}
		if shape.Message != "" {
			return fmt.Errorf("remote API error: %s", shape.Message)
		}
	}
	return fmt.Errorf("remote API returned HTTP %d", status)
}
