package composition

import (
	"contrapunto/internal/service/composition"
)

// Handler exposes the composition service over HTTP. All composition routes go
// through this struct.
type Handler struct {
	svc *composition.Service
}

// NewHandler creates a composition handler.
func NewHandler(svc *composition.Service) *Handler {
	return &Handler{
		svc: svc,
	}
}
