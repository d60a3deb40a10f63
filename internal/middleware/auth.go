package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"intervai/server/internal/models"
	"intervai/server/internal/utils"
)

const identityKey contextKey = "identity"

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// VerifyToken reads the bearer token from the Authorization header and
// returns its claims when the HMAC signature is valid.
func VerifyToken(r *http.Request, secret string) (jwt.MapClaims, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, ErrMissingAuthHeader
	}
	if secret == "" {
		return nil, ErrInvalidToken
	}
	tokenStr := strings.TrimPrefix(authz, "Bearer ")

	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// IdentityFromClaims maps "sub" and the optional "email" claim to an Identity.
func IdentityFromClaims(claims jwt.MapClaims) (models.Identity, error) {
	var identity models.Identity
	switch v := claims["sub"].(type) {
	case string:
		identity.UserID = v
	case float64:
		// JWT numbers get decoded as float64
		identity.UserID = fmt.Sprintf("%d", int64(v))
	case nil:
		return identity, errors.New("missing sub claim")
	default:
		return identity, errors.New("invalid sub claim type")
	}
	if identity.UserID == "" {
		return identity, errors.New("empty sub claim")
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's Identity in the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := VerifyToken(r, secret)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			identity, err := IdentityFromClaims(claims)
			if err != nil {
				unauthorized(w, ErrInvalidClaims.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
		Code:    "unauthorized",
		Message: message,
	})
}
