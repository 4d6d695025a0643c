package composition

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
	compmodel "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/ctxutil"
	"contrapunto/internal/service/composition"
)

// ErrorResponse is the shared error body (alias of model.ErrorResponse).
type ErrorResponse = model.ErrorResponse

// CompositionURI binds the composition id path parameter.
type CompositionURI struct {
	CompositionID string `uri:"composition_id" binding:"required"`
}

// UnitURI binds the composition id plus the unit index path parameters.
type UnitURI struct {
	CompositionID string `uri:"composition_id" binding:"required"`
	Index         int    `uri:"index" binding:"required,min=1"`
}

// ClipInfo describes an uploaded source clip.
type ClipInfo struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Filename    string `json:"filename,omitempty"`
}

// UnitInfo is the dialog unit DTO.
type UnitInfo struct {
	Index      int                    `json:"index"`
	Character  string                 `json:"character,omitempty"`
	Background string                 `json:"background,omitempty"`
	Mode       string                 `json:"generation_mode,omitempty"`
	Dialog     string                 `json:"dialog,omitempty"`
	Clip       *ClipInfo              `json:"clip,omitempty"`
	Result     *compmodel.ArtifactRef `json:"result,omitempty"`
	Status     string                 `json:"status"`
	LastError  string                 `json:"last_error,omitempty"`
}

func toUnitInfo(u compmodel.DialogUnit) UnitInfo {
	info := UnitInfo{
		Index:      u.Index,
		Character:  string(u.Character),
		Background: string(u.Background),
		Mode:       string(u.Mode),
		Dialog:     u.Dialog,
		Result:     u.Result,
		Status:     string(u.Status),
		LastError:  u.LastError,
	}
	if u.Clip != nil {
		info.Clip = &ClipInfo{
			Key:         u.Clip.Key,
			URL:         u.Clip.URL,
			ContentType: u.Clip.ContentType,
			Size:        u.Clip.Size,
			Filename:    u.Clip.Filename,
		}
	}
	return info
}

func toUnitInfoList(units []compmodel.DialogUnit) []UnitInfo {
	result := make([]UnitInfo, len(units))
	for i, u := range units {
		result[i] = toUnitInfo(u)
	}
	return result
}

// MergeInfo is the merge state DTO.
type MergeInfo struct {
	Segments  []compmodel.Segment `json:"segments,omitempty"`
	MergedURL string              `json:"merged_url,omitempty"`
	Status    string              `json:"status"`
	LastError string              `json:"last_error,omitempty"`
}

// PublishInfo is the publish state DTO.
type PublishInfo struct {
	PublishedURL string `json:"published_url,omitempty"`
	Status       string `json:"status"`
	LastError    string `json:"last_error,omitempty"`
}

// CompositionInfo is the composition DTO.
type CompositionInfo struct {
	ID        string      `json:"id"`
	Title     string      `json:"title,omitempty"`
	Summary   string      `json:"summary,omitempty"`
	Units     []UnitInfo  `json:"units"`
	Merge     MergeInfo   `json:"merge"`
	Publish   PublishInfo `json:"publish"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

func toCompositionInfo(c *compmodel.Composition) CompositionInfo {
	return CompositionInfo{
		ID:      c.ID,
		Title:   c.Title,
		Summary: c.Summary,
		Units:   toUnitInfoList(c.Units),
		Merge: MergeInfo{
			Segments:  c.Merge.Segments,
			MergedURL: c.Merge.MergedURL,
			Status:    string(c.Merge.Status),
			LastError: c.Merge.LastError,
		},
		Publish: PublishInfo{
			PublishedURL: c.Publish.PublishedURL,
			Status:       string(c.Publish.Status),
			LastError:    c.Publish.LastError,
		},
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toCompositionInfoList(comps []*compmodel.Composition) []CompositionInfo {
	result := make([]CompositionInfo, len(comps))
	for i, c := range comps {
		result[i] = toCompositionInfo(c)
	}
	return result
}

// userID pulls the authenticated user id injected by the auth middleware.
func userID(c *gin.Context) (string, bool) {
	id, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    model.CodeUnauthorized,
			Message: "unauthorized",
		})
		return "", false
	}
	return id, true
}

// writeError maps service errors onto the unified error body. fallback is the
// status used when no known error matches: CRUD handlers pass 500, workflow
// handlers pass 502 because their unknown errors come from the backend.
func writeError(c *gin.Context, err error, fallback int) {
	var vErr *compmodel.ValidationError
	var mErr *composition.MergeError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeValidation,
			Message: vErr.Message,
		})
	case errors.Is(err, composition.ErrCompositionNotFound),
		errors.Is(err, composition.ErrUnitNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    model.CodeNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, composition.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    model.CodeConflict,
			Message: err.Error(),
		})
	case errors.Is(err, composition.ErrNotEnoughUnits),
		errors.Is(err, composition.ErrMergeNotReady):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeValidation,
			Message: err.Error(),
		})
	case errors.As(err, &mErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    model.CodeBackend,
			Message: mErr.Error(),
		})
	default:
		code := model.CodeInternal
		if fallback == http.StatusBadGateway {
			code = model.CodeBackend
		}
		c.JSON(fallback, ErrorResponse{
			Code:    code,
			Message: err.Error(),
		})
	}
}
