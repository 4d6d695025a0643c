package workflow

import (
	"context"
	"encoding/json"
	"fmt"
)

// PostVideo publishes a merged video and returns the external-facing URL.
func (c *Client) PostVideo(ctx context.Context, title, summary, videoURL string) (string, error) {
	payload := map[string]string{
		"title":   title,
		"summary": summary,
		"video":   videoURL,
	}

	body, err := c.postJSON(ctx, c.publish, c.endpoint("post-video"), payload)
	if err != nil {
		return "", fmt.Errorf("publish backend: %w", err)
	}

	obj, err := unwrap(body)
	if err != nil {
		return "", fmt.Errorf("publish backend: %w", err)
	}

	var resp struct {
		VideoURL string `json:"video_url"`
	}
	if err := json.Unmarshal(obj, &resp); err != nil {
		return "", fmt.Errorf("publish backend: %w", ErrMalformedResponse)
	}
	if !IsValidVideoURL(resp.VideoURL) {
		return "", fmt.Errorf("publish backend: %w", ErrMalformedResponse)
	}
	return resp.VideoURL, nil
}
