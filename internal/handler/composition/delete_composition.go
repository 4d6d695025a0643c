package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// DeleteComposition removes a composition
// @Summary      Delete a composition
// @Description  Soft-deletes the composition; its clips stay in storage
// @Tags         compositions
// @Produce      json
// @Param        composition_id  path      string  true  "Composition ID"
// @Success      200             {object}  map[string]interface{}
// @Failure      404             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id} [delete]
func (h *Handler) DeleteComposition(c *gin.Context) {
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

	if err := h.svc.DeleteComposition(c.Request.Context(), owner, uri.CompositionID); err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
	})
}
