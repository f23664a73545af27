package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/services"
)

// PlanHandler handles plan-level requests.
type PlanHandler struct {
	planService  services.PlanServicer
	auditService services.AuditServicer
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService services.PlanServicer, auditService services.AuditServicer) *PlanHandler {
	return &PlanHandler{planService: planService, auditService: auditService}
}

// SetRedlineRequest represents the request payload for setting the redline.
type SetRedlineRequest struct {
	RedlineCents *int64 `json:"redline_cents" binding:"required,gte=0,lte=1000000000000"`
}

// UpdateSummaryRequest represents the request payload for updating the
// couple's preferences. Omitted date windows are left unchanged.
type UpdateSummaryRequest struct {
	Summary     models.PlanSummary  `json:"summary"`
	DateWindows []models.DateWindow `json:"date_windows" binding:"omitempty,max=12,dive"`
}

// UpdateRatesRequest represents the request payload for updating fee rates.
type UpdateRatesRequest struct {
	TaxPct      *float64 `json:"tax_pct" binding:"required,gte=0,lte=1"`
	ServicePct  *float64 `json:"service_pct" binding:"required,gte=0,lte=1"`
	GratuityPct *float64 `json:"gratuity_pct" binding:"required,gte=0,lte=1"`
}

func planBody(view *services.PlanView) gin.H {
	return gin.H{"plan": view.Plan, "totals": view.Totals, "decisions": view.Decisions}
}

// GetPlan returns the user's plan, creating a default one on first use.
// @Summary     Get plan
// @Description Get the plan with reconciled totals and its decisions ordered by impact
// @Tags        plan
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PlanView "Plan"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Plan busy"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.planService.GetPlan(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, planBody(view))
}

// SetRedline handles updating the plan's budget ceiling.
// @Summary     Set redline
// @Description Set the subtotal ceiling that guards decision changes
// @Tags        plan
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetRedlineRequest true "Redline in cents"
// @Success     200 {object} services.PlanView "Plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/redline [put]
func (h *PlanHandler) SetRedline(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetRedlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	view, err := h.planService.SetRedline(c.Request.Context(), userID, *req.RedlineCents)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionSetRedline, "plan", view.Plan.ID, c.ClientIP(),
		map[string]interface{}{"redline_cents": *req.RedlineCents})

	respond(c, http.StatusOK, planBody(view))
}

// UpdateSummary handles replacing the couple's stated preferences.
// @Summary     Update plan summary
// @Description Replace the preference summary and optionally the candidate date windows
// @Tags        plan
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSummaryRequest true "Summary"
// @Success     200 {object} services.PlanView "Plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/summary [put]
func (h *PlanHandler) UpdateSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	view, err := h.planService.UpdateSummary(c.Request.Context(), userID, req.Summary, req.DateWindows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionUpdateSummary, "plan", view.Plan.ID, c.ClientIP(),
		map[string]interface{}{"vibe": req.Summary.Vibe, "date_windows": len(req.DateWindows)})

	respond(c, http.StatusOK, planBody(view))
}

// UpdateRates handles changing the plan's fee multipliers.
// @Summary     Update fee rates
// @Description Set tax, service and gratuity rates as fractions in [0,1]
// @Tags        plan
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateRatesRequest true "Rates"
// @Success     200 {object} services.PlanView "Plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/rates [put]
func (h *PlanHandler) UpdateRates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	rates := money.Rates{TaxPct: *req.TaxPct, ServicePct: *req.ServicePct, GratuityPct: *req.GratuityPct}

	view, err := h.planService.UpdateRates(c.Request.Context(), userID, rates)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionUpdateRates, "plan", view.Plan.ID, c.ClientIP(),
		map[string]interface{}{"tax_pct": rates.TaxPct, "service_pct": rates.ServicePct, "gratuity_pct": rates.GratuityPct})

	respond(c, http.StatusOK, planBody(view))
}

// GetDiff compares current totals with the totals of a proposed subtotal.
// @Summary     Get totals diff
// @Description Project fees for a proposed subtotal next to the current totals
// @Tags        plan
// @Produce     json
// @Security    BearerAuth
// @Param       proposed_subtotal_cents query int false "Proposed subtotal in cents"
// @Success     200 {object} budget.Diff "Current and proposed totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plan/diff [get]
func (h *PlanHandler) GetDiff(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var proposed *int64
	if v := c.Query("proposed_subtotal_cents"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "proposed_subtotal_cents must be an integer"))
			return
		}
		proposed = &n
	}

	diff, err := h.planService.GetDiff(c.Request.Context(), userID, proposed)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"current": diff.Current, "proposed": diff.Proposed})
}
