package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/logger"
)

const maxItemIDLength = 100

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	OK    bool        `json:"ok"`
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the resolved user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getSessionKey returns the undo slot key set by the session middleware, or
// "" when the route runs without one.
func getSessionKey(c *gin.Context) string {
	return c.GetString("sessionKey")
}

// parseItemID returns the :id path parameter of a decision route.
func parseItemID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || len(id) > maxItemIDLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid decision id")
	}
	return id, nil
}

// bindOptionalJSON binds the request body into obj. An empty body leaves obj
// at its zero value.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// respond writes a success body with "ok": true added.
func respond(c *gin.Context, status int, body gin.H) {
	body["ok"] = true
	c.JSON(status, body)
}

// errorBody is the JSON envelope for err.
func errorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{
		"ok": false,
		"error": gin.H{
			"code":      appErr.Code,
			"message":   appErr.Message,
			"retryable": appErr.Retryable,
		},
	}
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, errorBody(appErr))
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, errorBody(apperrors.ErrInternalServer))
}
