package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// GenerateUnit renders one dialog unit
// @Summary      Generate a unit's video
// @Description  Calls the generation backend for one unit; a unit that is
// @Description  already processing is rejected without a second call
// @Tags         workflow
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Param        index           path      int     true  "Unit index"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Failure      502             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/units/{index}/generate [post]
func (h *Handler) GenerateUnit(c *gin.Context) {
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

	unit, err := h.svc.GenerateUnit(c.Request.Context(), owner, uri.CompositionID, uri.Index)
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
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
