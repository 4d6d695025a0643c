package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// PublishComposition posts the merged video
// @Summary      Publish the merged video
// @Description  Hands the merged video to the publish backend; requires a
// @Description  successful merge first
// @Tags         workflow
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      502             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/publish [post]
func (h *Handler) PublishComposition(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	var uri CompositionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeBadRequest,
			Message: "Invalid composition_id",
			Detail:  err.Error(),
		})
		return
	}

	record, err := h.svc.Publish(c.Request.Context(), owner, uri.CompositionID)
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"publish": PublishInfo{
				PublishedURL: record.PublishedURL,
				Status:       string(record.Status),
				LastError:    record.LastError,
			},
		},
	})
}
