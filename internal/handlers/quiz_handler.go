package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/services"
)

// QuizHandler handles onboarding quiz submissions.
type QuizHandler struct {
	quizService  services.QuizServicer
	auditService services.AuditServicer
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService services.QuizServicer, auditService services.AuditServicer) *QuizHandler {
	return &QuizHandler{quizService: quizService, auditService: auditService}
}

// Submit stores the answers and seeds the plan's redline and preferences.
// @Summary     Submit onboarding quiz
// @Description Store quiz answers, derive style tags and set the plan's redline from the stated budget
// @Tags        quiz
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body services.QuizAnswers true "Quiz answers"
// @Success     200 {object} services.QuizResult "Tags, summary and plan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /quiz/submit [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var answers services.QuizAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	res, err := h.quizService.Submit(c.Request.Context(), userID, answers)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionQuizSubmitted, "plan", res.Plan.Plan.ID, c.ClientIP(),
		map[string]interface{}{"quiz_id": answers.QuizID, "tags": res.Tags, "redline_cents": res.Plan.Plan.RedlineCents})

	respond(c, http.StatusOK, gin.H{"tags": res.Tags, "summary": res.Summary, "plan": planBody(res.Plan)})
}
