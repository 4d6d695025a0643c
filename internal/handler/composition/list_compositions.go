package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListCompositions lists the caller's compositions
// @Summary      List compositions
// @Description  Returns the authenticated user's compositions, newest first
// @Tags         compositions
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/compositions [get]
func (h *Handler) ListCompositions(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	comps, err := h.svc.ListCompositions(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"compositions": toCompositionInfoList(comps),
			"total":        len(comps),
		},
	})
}
