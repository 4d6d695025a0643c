package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Artifact is a generated video reference as returned by the generation
// backends.
type Artifact struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// decodeArtifact unwraps and validates a generation response. A reply without
// an id or without a usable URL is malformed no matter what the HTTP status
// said.
func decodeArtifact(body []byte) (*Artifact, error) {
	obj, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(obj, &a); err != nil {
		return nil, ErrMalformedResponse
	}
	if a.ID == "" || !IsValidVideoURL(a.URL) {
		return nil, ErrMalformedResponse
	}
	return &a, nil
}

// GenerateVideoFromText calls the Hedra-style text-to-video backend.
func (c *Client) GenerateVideoFromText(ctx context.Context, character, dialog, background string) (*Artifact, error) {
	payload := map[string]string{
		"character": character,
		"dialog":    dialog,
	}
	if background != "" {
		payload["background"] = background
	}

	body, err := c.postJSON(ctx, c.generate, c.endpoint("generate-video-hedra"), payload)
	if err != nil {
		return nil, fmt.Errorf("hedra backend: %w", err)
	}

	artifact, err := decodeArtifact(body)
	if err != nil {
		return nil, fmt.Errorf("hedra backend: %w", err)
	}
	return artifact, nil
}

// GenerateVideoFromClip calls the Runway-style video-to-video backend with a
// multipart upload of the source clip.
func (c *Client) GenerateVideoFromClip(ctx context.Context, character, background, filename string, clip io.Reader) (*Artifact, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("character", character); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if background != "" {
		if err := writer.WriteField("background", background); err != nil {
			return nil, fmt.Errorf("build multipart request: %w", err)
		}
	}

	if filename == "" {
		filename = "clip.mp4"
	}
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}
	if _, err := io.Copy(part, clip); err != nil {
		return nil, fmt.Errorf("read source clip: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("generate-video-runway"), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(c.generate, req)
	if err != nil {
		return nil, fmt.Errorf("runway backend: %w", err)
	}

	artifact, err := decodeArtifact(body)
	if err != nil {
		return nil, fmt.Errorf("runway backend: %w", err)
	}
	return artifact, nil
}
