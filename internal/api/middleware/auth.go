package middleware

import (
	"context"
	"net/http"
	"time"

	"associados_api/internal/common"
	"associados_api/internal/common/security"
	"associados_api/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey      contextKey = "userID"
	TokenIDCtxKey     contextKey = "tokenID"
	TokenExpiryCtxKey contextKey = "tokenExpiry"
)

// Authenticator gates protected routes. It expects jwtauth.Verifier to
// have run already and additionally rejects blacklisted tokens, so a
// logged-out token fails even before its natural expiry.
type Authenticator struct {
	blacklist repository.TokenBlacklist
}

func NewAuthenticator(blacklist repository.TokenBlacklist) *Authenticator {
	return &Authenticator{blacklist: blacklist}
}

func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondError(w, r, common.ErrUnauthorized)
			return
		}

		jti, err := security.GetTokenIDFromClaims(claims)
		if err != nil {
			common.RespondError(w, r, common.ErrUnauthorized)
			return
		}

		revoked, err := a.blacklist.IsRevoked(r.Context(), jti)
		if err != nil {
			common.RespondError(w, r, err)
			return
		}
		if revoked {
			common.RespondError(w, r, common.ErrUnauthorized)
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondError(w, r, common.ErrUnauthorized)
			return
		}
		expiresAt, err := security.GetExpiryFromClaims(claims)
		if err != nil {
			common.RespondError(w, r, common.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, TokenIDCtxKey, jti)
		ctx = context.WithValue(ctx, TokenExpiryCtxKey, expiresAt)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	jti, ok := ctx.Value(TokenIDCtxKey).(string)
	return jti, ok
}

func GetTokenExpiryFromContext(ctx context.Context) (time.Time, bool) {
	expiresAt, ok := ctx.Value(TokenExpiryCtxKey).(time.Time)
	return expiresAt, ok
}
