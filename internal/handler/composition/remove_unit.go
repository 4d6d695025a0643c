package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// RemoveUnit deletes a dialog unit
// @Summary      Remove a dialog unit
// @Description  Deletes the unit; remaining indices are never renumbered
// @Tags         units
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Param        index           path      int     true  "Unit index"
// @Success      200             {object}  map[string]interface{}
// @Failure      404             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/units/{index} [delete]
func (h *Handler) RemoveUnit(c *gin.Context) {
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

	if err := h.svc.RemoveUnit(c.Request.Context(), owner, uri.CompositionID, uri.Index); err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}
