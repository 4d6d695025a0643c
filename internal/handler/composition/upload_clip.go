package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// UploadClip attaches a source clip to a unit
// @Summary      Upload a source clip
// @Description  Stores an MP4 clip and points the unit at it
// @Tags         units
// @Accept       multipart/form-data
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Param        index           path      int     true  "Unit index"
// @Param        video           formData  file    true  "MP4 clip"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/units/{index}/clip [post]
func (h *Handler) UploadClip(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	var uri UnitURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeBadRequest,
			Message: "Invalid path parameters",
			Detail:  err.Error(),
		})
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeBadRequest,
			Message: "Missing video file",
			Detail:  err.Error(),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeBadRequest,
			Message: "Unreadable video file",
			Detail:  err.Error(),
		})
		return
	}
	defer src.Close()

	unit, err := h.svc.AttachClip(c.Request.Context(), owner, uri.CompositionID, uri.Index,
		file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"unit": toUnitInfo(unit),
		},
	})
}
