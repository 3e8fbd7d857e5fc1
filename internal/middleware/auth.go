package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/utils"
)

const callerIDKey contextKey = "caller_id"

// Auth verifies the bearer token on every request and stores the
// caller id in the request context. Expired tokens are distinguished
// from malformed ones so clients know whether to refresh.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "missing_authorization",
					Message: "Missing or malformed Authorization header",
				})
				return
			}
			tokenStr := strings.TrimPrefix(authz, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenUnverifiable
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				code := "invalid_token"
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					code = "token_expired"
					message = "Token has expired"
				}
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    code,
					Message: message,
				})
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "invalid_token",
					Message: "Invalid token claims",
				})
				return
			}

			callerID, err := subjectFromClaims(claims)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "invalid_token",
					Message: "Token has no usable subject",
				})
				return
			}

			ctx := context.WithValue(r.Context(), callerIDKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated caller id set by Auth, or ""
// when the request never passed through it.
func CallerID(r *http.Request) string {
	if id, ok := r.Context().Value(callerIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCallerID injects a caller id directly; test helper.
func WithCallerID(r *http.Request, callerID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callerIDKey, callerID))
}

// subjectFromClaims extracts the "sub" (user ID) from claims safely as a string.
func subjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"]
	if !ok {
		return "", errors.New("missing sub claim")
	}

	switch v := sub.(type) {
	case string:
		if v == "" {
			return "", errors.New("empty sub claim")
		}
		return v, nil
	case float64:
		// JWT numbers get decoded as float64
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", errors.New("invalid sub claim type")
	}
}
