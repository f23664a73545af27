package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "weddingbudget/internal/errors"
)

const (
	userIDKey    = "userID"
	userIDHeader = "X-User-ID"
	userIDCookie = "uid"
)

// IdentityConfig controls how a request is tied to a user.
type IdentityConfig struct {
	// JWTSecret verifies HS256 bearer tokens. Tokens are rejected when empty.
	JWTSecret string
	// AllowDev accepts the X-User-ID header, the uid cookie and DevUserID
	// when no bearer token is present.
	AllowDev  bool
	DevUserID string
}

// IdentityClaims is the token body issued by the account service.
type IdentityClaims struct {
	jwt.RegisteredClaims
}

// Identity resolves the user that owns the request and stores the id under
// "userID". It does not authenticate anything beyond verifying the token.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, appErr := resolveUser(c, cfg)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func resolveUser(c *gin.Context, cfg IdentityConfig) (string, *apperrors.AppError) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", apperrors.WithMessage(apperrors.ErrInvalidToken, "Invalid authorization header format")
		}
		subject, err := verifyToken(parts[1], cfg.JWTSecret)
		if err != nil {
			return "", apperrors.ErrInvalidToken
		}
		return subject, nil
	}

	if !cfg.AllowDev {
		return "", apperrors.ErrUnauthorized
	}
	if id := strings.TrimSpace(c.GetHeader(userIDHeader)); id != "" {
		return id, nil
	}
	if id, err := c.Cookie(userIDCookie); err == nil && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id), nil
	}
	if cfg.DevUserID != "" {
		return cfg.DevUserID, nil
	}
	return "", apperrors.ErrUnauthorized
}

func verifyToken(raw, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token verification is not configured")
	}
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, errorBody(appErr))
}

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
