package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Fazilniyaz/cable-net-complete-backend/config"
	"github.com/Fazilniyaz/cable-net-complete-backend/models"
)

const tokenTTL = 24 * time.Hour

type contextKey string

const claimsContextKey contextKey = "authClaims"

// Claims are the signed token contents: the admin identity plus standard
// registered claims (expiry).
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the admin with a 24-hour expiry.
func GenerateToken(admin *models.Admin) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:       admin.ID.Hex(),
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret())
}

// ValidateToken parses and verifies a signed token string.
func ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return config.JWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// extractBearer pulls the token out of an Authorization header.
func extractBearer(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware gates a route on a valid bearer token. A missing token is
// 401, a token that fails verification (bad signature, expired) is 403.
// Valid claims are attached to the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractBearer(r.Header.Get("Authorization"))
		if tokenStr == "" {
			writeAuthError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		claims, err := ValidateToken(tokenStr)
		if err != nil {
			writeAuthError(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the verified claims attached by AuthMiddleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message": "` + message + `"}`))
}
