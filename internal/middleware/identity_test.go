package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-identity-secret"

func setupIdentityRouter(cfg IdentityConfig) *gin.Engine {
	r := gin.New()
	r.Use(Identity(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(userIDKey)})
	})
	return r
}

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := &IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestIdentity(t *testing.T) {
	dev := IdentityConfig{JWTSecret: testSecret, AllowDev: true, DevUserID: "demo-user"}
	prod := IdentityConfig{JWTSecret: testSecret}

	tests := []struct {
		name          string
		cfg           IdentityConfig
		setup         func(t *testing.T, req *http.Request)
		wantStatus    int
		wantUserID    string
		wantErrorCode string
	}{
		{
			name: "valid_bearer_token",
			cfg:  prod,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", time.Hour))
			},
			wantStatus: http.StatusOK,
			wantUserID: "user-42",
		},
		{
			name: "token_wins_over_dev_header",
			cfg:  dev,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", time.Hour))
				req.Header.Set("X-User-ID", "someone-else")
			},
			wantStatus: http.StatusOK,
			wantUserID: "user-42",
		},
		{
			name: "expired_token",
			cfg:  prod,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", -time.Minute))
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_TOKEN",
		},
		{
			name: "wrong_secret",
			cfg:  prod,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-42", time.Hour))
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_TOKEN",
		},
		{
			name: "token_without_subject",
			cfg:  prod,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "", time.Hour))
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_TOKEN",
		},
		{
			name: "malformed_header",
			cfg:  dev,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Token abc")
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_TOKEN",
		},
		{
			name: "token_rejected_without_secret",
			cfg:  IdentityConfig{AllowDev: true, DevUserID: "demo-user"},
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-42", time.Hour))
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_TOKEN",
		},
		{
			name: "dev_header",
			cfg:  dev,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("X-User-ID", "couple-7")
			},
			wantStatus: http.StatusOK,
			wantUserID: "couple-7",
		},
		{
			name: "dev_cookie",
			cfg:  dev,
			setup: func(t *testing.T, req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "uid", Value: "cookie-user"})
			},
			wantStatus: http.StatusOK,
			wantUserID: "cookie-user",
		},
		{
			name:       "dev_default_user",
			cfg:        dev,
			setup:      func(t *testing.T, req *http.Request) {},
			wantStatus: http.StatusOK,
			wantUserID: "demo-user",
		},
		{
			name: "dev_header_ignored_in_production",
			cfg:  prod,
			setup: func(t *testing.T, req *http.Request) {
				req.Header.Set("X-User-ID", "couple-7")
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "UNAUTHORIZED",
		},
		{
			name:          "dev_without_default",
			cfg:           IdentityConfig{AllowDev: true},
			setup:         func(t *testing.T, req *http.Request) {},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupIdentityRouter(tt.cfg)
			req := httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody)
			tt.setup(t, req)
			rec := doRequest(router, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
				return
			}
			body := parseBody(t, rec)
			if got, _ := body["user_id"].(string); got != tt.wantUserID {
				t.Errorf("user_id = %q, want %q", got, tt.wantUserID)
			}
		})
	}
}
