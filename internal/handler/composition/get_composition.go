package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// GetComposition returns one composition
// @Summary      Get a composition
// @Description  Returns the composition with its units, merge and publish state
// @Tags         compositions
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Success      200             {object}  map[string]interface{}
// @Failure      404             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id} [get]
func (h *Handler) GetComposition(c *gin.Context) {
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

	comp, err := h.svc.GetComposition(c.Request.Context(), owner, uri.CompositionID)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"composition": toCompositionInfo(comp),
		},
	})
}
