package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
)

// ErrMalformedResponse marks a backend reply whose shape we could not use:
// wrong JSON, missing id/url, or an unusable URL. Treated as a failure even
// when the HTTP layer reported success.
var ErrMalformedResponse = errors.New("malformed backend response")

// unwrap normalizes the backends' array-or-object habit: some workflows wrap
// their single result object in a one-element array. All response decoding
// goes through here so the rest of the code never checks for arrays.
func unwrap(data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrMalformedResponse
	}
	if trimmed[0] != '[' {
		return trimmed, nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(trimmed, &arr); err != nil {
		return nil, ErrMalformedResponse
	}
	if len(arr) == 0 {
		return nil, ErrMalformedResponse
	}
	return arr[0], nil
}

// IsValidVideoURL reports whether raw is an absolute http or https URL. The
// merge and publish backends have returned success envelopes around unusable
// references before; nothing is accepted without passing this check.
func IsValidVideoURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
