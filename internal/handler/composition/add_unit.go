package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// AddUnit appends a blank dialog unit
// @Summary      Add a dialog unit
// @Description  Appends an empty unit with the next free index
// @Tags         units
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Success      200             {object}  map[string]interface{}
// @Failure      404             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/units [post]
func (h *Handler) AddUnit(c *gin.Context) {
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

	unit, err := h.svc.AddUnit(c.Request.Context(), owner, uri.CompositionID)
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
