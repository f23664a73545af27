package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weddingbudget/internal/services"
)

// OptimizerHandler handles automatic budget optimization.
type OptimizerHandler struct {
	optimizerService services.OptimizerServicer
	auditService     services.AuditServicer
}

// NewOptimizerHandler creates a new OptimizerHandler.
func NewOptimizerHandler(optimizerService services.OptimizerServicer, auditService services.AuditServicer) *OptimizerHandler {
	return &OptimizerHandler{optimizerService: optimizerService, auditService: auditService}
}

// OptimizeRequest optionally overrides the target. The plan's redline is
// used when TargetCents is omitted.
type OptimizeRequest struct {
	TargetCents *int64 `json:"target_cents" binding:"omitempty,gte=0,lte=1000000000000"`
}

// Optimize swaps lower-impact selections for cheaper alternates until the
// plan fits its target.
// @Summary     Optimize to redline
// @Description Greedily swap low-impact items to cheaper alternates until the subtotal is at or under the target
// @Tags        plan
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OptimizeRequest false "Optional target"
// @Success     200 {object} services.OptimizeView "Applied swaps"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Plan busy"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/optimize [post]
func (h *OptimizerHandler) Optimize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OptimizeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.optimizerService.OptimizeToRedline(c.Request.Context(), userID, getSessionKey(c), req.TargetCents)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if len(view.Applied) > 0 {
		swapped := make([]string, len(view.Applied))
		for i, s := range view.Applied {
			swapped[i] = s.ItemID + ":" + s.To.ID
		}
		h.auditService.Log(userID, services.ActionOptimizeToBudget, "plan", "", c.ClientIP(),
			map[string]interface{}{"swaps": swapped, "saved": view.Saved, "target_cents": view.TargetCents})
	}

	respond(c, http.StatusOK, gin.H{
		"applied":        view.Applied,
		"totals":         view.Totals,
		"saved":          view.Saved,
		"target_cents":   view.TargetCents,
		"reached_target": view.ReachedTarget,
		"message":        view.Message,
	})
}
