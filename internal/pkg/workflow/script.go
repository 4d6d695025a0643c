package workflow

import (
	"context"
	"encoding/json"
	"fmt"
)

// ScriptDialog is one character/line pair of a generated script.
type ScriptDialog struct {
	Index     int    `json:"index"`
	Character string `json:"character"`
	Dialog    string `json:"dialog"`
}

// Script is a generated news script.
type Script struct {
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	Dialogs []ScriptDialog `json:"dialogs"`
}

// GenerateScript asks the script backend for a news script. The search query
// is optional; without one the backend picks a current topic itself.
func (c *Client) GenerateScript(ctx context.Context, searchQuery string) (*Script, error) {
	var payload any
	if searchQuery != "" {
		payload = map[string]string{"search_query": searchQuery}
	}

	body, err := c.postJSON(ctx, c.script, c.endpoint("generate-news-script"), payload)
	if err != nil {
		return nil, fmt.Errorf("script backend: %w", err)
	}

	obj, err := unwrap(body)
	if err != nil {
		return nil, fmt.Errorf("script backend: %w", err)
	}

	var script Script
	if err := json.Unmarshal(obj, &script); err != nil {
		return nil, fmt.Errorf("script backend: %w", ErrMalformedResponse)
	}

	// A script without dialogs is unusual but not an error
	if script.Dialogs == nil {
		script.Dialogs = []ScriptDialog{}
	}

	return &script, nil
}
