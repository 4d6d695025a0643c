package workflow

import (
	"context"
	"encoding/json"
	"fmt"
)

// MergeSegment is one entry of the ordered segment list sent to the merge
// backend.
type MergeSegment struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	VideoURL string `json:"video_url"`
}

// mergeResponse covers the keys different merge workflow versions have used
// for the final artifact reference.
type mergeResponse struct {
	Data          string `json:"data"`
	VideoURL      string `json:"video_url"`
	URL           string `json:"url"`
	VideoURLCamel string `json:"videoUrl"`
	Error         string `json:"error"`
}

// MergeVideos submits the full ordered segment list in one call and returns
// the merged artifact URL. The backend's reference key varies by workflow
// version; whichever key carries it, the value must be an absolute http(s)
// URL or the merge counts as failed.
func (c *Client) MergeVideos(ctx context.Context, segments []MergeSegment) (string, error) {
	payload := map[string]any{"videos": segments}

	body, err := c.postJSON(ctx, c.merge, c.endpoint("merge-video"), payload)
	if err != nil {
		return "", fmt.Errorf("merge backend: %w", err)
	}

	obj, err := unwrap(body)
	if err != nil {
		return "", fmt.Errorf("merge backend: %w", err)
	}

	var resp mergeResponse
	if err := json.Unmarshal(obj, &resp); err != nil {
		return "", fmt.Errorf("merge backend: %w", ErrMalformedResponse)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("merge backend: %s", resp.Error)
	}

	merged := resp.VideoURL
	if merged == "" {
		merged = resp.URL
	}
	if merged == "" {
		merged = resp.VideoURLCamel
	}
	if merged == "" {
		merged = resp.Data
	}

	if !IsValidVideoURL(merged) {
		return "", fmt.Errorf("merge backend: %w", ErrMalformedResponse)
	}
	return merged, nil
}
