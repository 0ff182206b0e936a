package delivery

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/apperr"
	"github.com/atadzan/calc-operation-api/internal/constants"
)

// TokenValidator checks HS256 tokens issued by the account service.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Validate returns the user id carried by token in the userId claim, or sub when userId is absent.
func (v *TokenValidator) Validate(token string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: constants.TokenExpired, Err: err}
		}
		return uuid.Nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: constants.InvalidToken, Err: err}
	}

	subject, _ := claims["userId"].(string)
	if subject == "" {
		subject, _ = claims.GetSubject()
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: constants.InvalidToken, Err: err}
	}
	return userID, nil
}

type ctxKey int

const (
	userIDKey ctxKey = iota
	tokenKey
)

func userIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// requireAuth rejects requests without a valid bearer token and stores the caller in the context.
func requireAuth(validator *TokenValidator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, log, apperr.Unauthorized(constants.InvalidToken))
				return
			}
			userID, err := validator.Validate(token)
			if err != nil {
				writeError(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return header
}
