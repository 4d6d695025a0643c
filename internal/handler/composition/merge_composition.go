package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// MergeComposition assembles the full video
// @Summary      Merge the composition
// @Description  Generates every unit that has no result yet, reuses the ones
// @Description  that do, then merges the segments in index order
// @Tags         workflow
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      502             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/merge [post]
func (h *Handler) MergeComposition(c *gin.Context) {
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

	result, err := h.svc.MergeAll(c.Request.Context(), owner, uri.CompositionID)
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"merge": MergeInfo{
				Segments:  result.Segments,
				MergedURL: result.MergedURL,
				Status:    string(result.Status),
				LastError: result.LastError,
			},
		},
	})
}
