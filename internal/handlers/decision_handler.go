package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"weddingbudget/internal/budget"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/models"
	"weddingbudget/internal/services"
)

// DecisionHandler handles guarded changes to decision items.
type DecisionHandler struct {
	decisionService services.DecisionServicer
	auditService    services.AuditServicer
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(decisionService services.DecisionServicer, auditService services.AuditServicer) *DecisionHandler {
	return &DecisionHandler{decisionService: decisionService, auditService: auditService}
}

// DecisionRequest names the option to commit, either as a full snapshot or
// by id. Override commits past the redline.
type DecisionRequest struct {
	Option   *models.Option `json:"option"`
	OptionID string         `json:"option_id" binding:"omitempty,max=100"`
	Override bool           `json:"override"`
}

// UndoRequest names the option to restore. Both fields are optional; the
// session's pending undo is used when neither is set.
type UndoRequest struct {
	PreviousOptionID string         `json:"previous_option_id" binding:"omitempty,max=100"`
	PreviousOption   *models.Option `json:"previous_option"`
}

// BlockedResponse is returned when the redline guard rejects a change.
type BlockedResponse struct {
	OK         bool              `json:"ok"`
	Error      ErrorDetail       `json:"error"`
	Evaluation budget.Evaluation `json:"evaluation"`
}

func (h *DecisionHandler) change(c *gin.Context) (string, services.DecisionChange, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return "", services.DecisionChange{}, false
	}

	itemID, err := parseItemID(c)
	if err != nil {
		respondWithError(c, err)
		return "", services.DecisionChange{}, false
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return "", services.DecisionChange{}, false
	}

	return userID, services.DecisionChange{
		ItemID:     itemID,
		Option:     req.Option,
		OptionID:   req.OptionID,
		Override:   req.Override,
		SessionKey: getSessionKey(c),
	}, true
}

// commit runs approve or swap and writes the response shared by both.
func (h *DecisionHandler) commit(
	c *gin.Context,
	action string,
	run func(userID string, change services.DecisionChange) (*services.CommitResult, error),
) {
	userID, change, ok := h.change(c)
	if !ok {
		return
	}

	res, err := run(userID, change)
	if errors.Is(err, apperrors.ErrRedlineExceeded) && res != nil {
		h.auditService.Log(userID, services.ActionRedlineIntercepted, "decision", change.ItemID, c.ClientIP(),
			map[string]interface{}{
				"option_id":         res.Evaluation.Option.ID,
				"proposed_subtotal": res.Evaluation.ProposedSubtotal,
				"redline_cents":     res.Evaluation.RedlineCents,
				"overage_cents":     res.Evaluation.OverageCents,
			})
		body := errorBody(apperrors.ErrRedlineExceeded)
		body["evaluation"] = res.Evaluation
		body["totals"] = res.Totals
		c.JSON(apperrors.ErrRedlineExceeded.StatusCode, body)
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, action, "decision", change.ItemID, c.ClientIP(),
		map[string]interface{}{
			"option_id":   res.Evaluation.Option.ID,
			"price_cents": res.Evaluation.Option.PriceCents,
			"overridden":  res.Overridden,
		})

	respond(c, http.StatusOK, gin.H{
		"committed":  res.Committed,
		"overridden": res.Overridden,
		"evaluation": res.Evaluation,
		"totals":     res.Totals,
		"item":       res.Item,
	})
}

// Approve handles committing an option to a decision item.
// @Summary     Approve decision
// @Description Commit an option to a decision item. Blocked when the new subtotal exceeds the redline unless override is set.
// @Tags        decisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Decision item ID"
// @Param       request body DecisionRequest true "Option or option id"
// @Success     200 {object} services.CommitResult "Committed"
// @Failure     400 {object} ErrorResponse   "Invalid input"
// @Failure     401 {object} ErrorResponse   "Unauthorized"
// @Failure     404 {object} ErrorResponse   "Decision or option not found"
// @Failure     409 {object} BlockedResponse "Redline exceeded"
// @Failure     503 {object} ErrorResponse   "Store unavailable"
// @Router      /plan/decisions/{id}/approve [post]
func (h *DecisionHandler) Approve(c *gin.Context) {
	h.commit(c, services.ActionDecisionApproved, func(userID string, change services.DecisionChange) (*services.CommitResult, error) {
		return h.decisionService.Approve(c.Request.Context(), userID, change)
	})
}

// Swap handles replacing the selection of a decision item.
// @Summary     Swap decision
// @Description Replace the selected option of a decision item, under the same redline guard as approve
// @Tags        decisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Decision item ID"
// @Param       request body DecisionRequest true "Option or option id"
// @Success     200 {object} services.CommitResult "Committed"
// @Failure     400 {object} ErrorResponse   "Invalid input"
// @Failure     401 {object} ErrorResponse   "Unauthorized"
// @Failure     404 {object} ErrorResponse   "Decision or option not found"
// @Failure     409 {object} BlockedResponse "Redline exceeded"
// @Failure     503 {object} ErrorResponse   "Store unavailable"
// @Router      /plan/decisions/{id}/swap [post]
func (h *DecisionHandler) Swap(c *gin.Context) {
	h.commit(c, services.ActionDecisionSwapped, func(userID string, change services.DecisionChange) (*services.CommitResult, error) {
		return h.decisionService.Swap(c.Request.Context(), userID, change)
	})
}

// Evaluate runs the redline guard without changing anything.
// @Summary     Evaluate decision
// @Description Report whether committing an option would stay within the redline
// @Tags        decisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Decision item ID"
// @Param       request body DecisionRequest true "Option or option id"
// @Success     200 {object} budget.Evaluation "Evaluation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Plan, decision or option not found"
// @Router      /plan/decisions/{id}/evaluate [post]
func (h *DecisionHandler) Evaluate(c *gin.Context) {
	userID, change, ok := h.change(c)
	if !ok {
		return
	}

	eval, err := h.decisionService.Evaluate(c.Request.Context(), userID, change)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"evaluation": eval})
}

// Undo handles restoring the previous selection of a decision item.
// @Summary     Undo decision
// @Description Restore the option that was selected before the last commit
// @Tags        decisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true  "Decision item ID"
// @Param       request body UndoRequest false "Previous option"
// @Success     200 {object} services.UndoResult "Restored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Nothing to undo"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/decisions/{id}/undo [post]
func (h *DecisionHandler) Undo(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parseItemID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UndoRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	res, err := h.decisionService.Undo(c.Request.Context(), userID, services.UndoRequest{
		ItemID:           itemID,
		PreviousOptionID: req.PreviousOptionID,
		PreviousOption:   req.PreviousOption,
		SessionKey:       getSessionKey(c),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionUndoApplied, "decision", itemID, c.ClientIP(),
		map[string]interface{}{"restored_option_id": res.Restored.ID})

	respond(c, http.StatusOK, gin.H{"totals": res.Totals, "item": res.Item, "restored": res.Restored})
}

// PendingUndo returns the session's pending undo record, if any.
// @Summary     Get pending undo
// @Description Get the last committed change this session can undo
// @Tags        decisions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} budget.UndoRecord "Pending undo, or null"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /plan/undo [get]
func (h *DecisionHandler) PendingUndo(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rec, err := h.decisionService.PendingUndo(c.Request.Context(), userID, getSessionKey(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"pending": rec})
}
