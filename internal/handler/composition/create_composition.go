package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// CreateComposition starts a new composition
// @Summary      Create a composition
// @Description  Creates an empty composition owned by the authenticated user
// @Tags         compositions
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateCompositionRequest  false  "Optional title and summary"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/compositions [post]
func (h *Handler) CreateComposition(c *gin.Context) {
	owner, ok := userID(c)
	if !ok {
		return
	}

	var req model.CreateCompositionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    model.CodeBadRequest,
				Message: "Invalid request body",
				Detail:  err.Error(),
			})
			return
		}
	}

	comp, err := h.svc.CreateComposition(c.Request.Context(), owner, req.Title, req.Summary)
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
