package composition

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contrapunto/internal/model"
	compmodel "contrapunto/internal/model/composition"
	"contrapunto/internal/service/composition"
)

// UpdateUnit edits a dialog unit
// @Summary      Update a dialog unit
// @Description  Applies a field-subset edit; absent fields are left untouched
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        composition_id  path      string                   true  "Composition ID"
// @Param        index           path      int                      true  "Unit index"
// @Param        request         body      model.UpdateUnitRequest  true  "Fields to change"
// @Success      200             {object}  map[string]interface{}
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /api/v1/compositions/{composition_id}/units/{index} [patch]
func (h *Handler) UpdateUnit(c *gin.Context) {
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

	var req model.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	patch, err := toUnitPatch(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    model.CodeValidation,
			Message: err.Error(),
		})
		return
	}

	unit, err := h.svc.UpdateUnit(c.Request.Context(), owner, uri.CompositionID, uri.Index, patch)
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

// toUnitPatch checks the enum fields against their known values before the
// edit reaches the store.
func toUnitPatch(req model.UpdateUnitRequest) (composition.UnitPatch, error) {
	var patch composition.UnitPatch
	if req.Character != nil {
		ch := compmodel.Character(*req.Character)
		if !ch.Valid() {
			return patch, &compmodel.ValidationError{Message: "Personaje no válido: " + *req.Character}
		}
		patch.Character = &ch
	}
	if req.Background != nil {
		bg := compmodel.Background(*req.Background)
		if !bg.Valid() {
			return patch, &compmodel.ValidationError{Message: "Escenario no válido: " + *req.Background}
		}
		patch.Background = &bg
	}
	if req.Mode != nil {
		mode := compmodel.GenerationMode(*req.Mode)
		if !mode.Valid() {
			return patch, &compmodel.ValidationError{Message: "Modo de generación no válido: " + *req.Mode}
		}
		patch.Mode = &mode
	}
	patch.Dialog = req.Dialog
	return patch, nil
}
