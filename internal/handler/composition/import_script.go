package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
)

// ImportScript seeds the composition from a news script
// @Summary      Import a generated script
// @Description  Fetches a news script from the script backend and replaces the
// @Description  composition's units with one text unit per dialog line
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        composition_id  path      string                     true   "Composition ID"
// @Param        request         body      model.ImportScriptRequest  false  "Optional search query"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      502             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/script [post]
func (h *Handler) ImportScript(c *gin.Context) {
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

	var req model.ImportScriptRequest
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

	comp, err := h.svc.ImportScript(c.Request.Context(), owner, uri.CompositionID, req.SearchQuery)
	if err != nil {
		writeError(c, err, http.StatusBadGateway)
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
