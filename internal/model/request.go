package model

// CreateCompositionRequest starts a new composition.
type CreateCompositionRequest struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// UpdateUnitRequest is a field-subset edit of one dialog unit. Absent fields
// are left untouched.
type UpdateUnitRequest struct {
	Character  *string `json:"character,omitempty"`
	Background *string `json:"background,omitempty"`
	Mode       *string `json:"generation_mode,omitempty"`
	Dialog     *string `json:"dialog,omitempty"`
}

// ImportScriptRequest seeds a composition from a generated news script.
type ImportScriptRequest struct {
	SearchQuery string `json:"search_query,omitempty"`
}
