package security

import (
	"errors"
	"strconv"
	"time"

	"associados_api/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a signed bearer token for the given user. Each
// token carries a unique jti so it can be individually revoked.
func GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(config.AppConfig.JWTExp).Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// TokenTTLSeconds is the lifetime reported to clients as expires_in.
func TokenTTLSeconds() int64 {
	return int64(config.AppConfig.JWTExp.Seconds())
}

func GetUserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("user_id claim is not a valid id")
	}
	return id, nil
}

func GetTokenIDFromClaims(claims jwt.MapClaims) (string, error) {
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return "", errors.New("jti claim is missing or not a string")
	}
	return jti, nil
}

// GetExpiryFromClaims reads the exp claim. jwx hands it back as a
// time.Time when the token came through the verifier; a freshly encoded
// claims map still holds the raw unix value.
func GetExpiryFromClaims(claims jwt.MapClaims) (time.Time, error) {
	switch exp := claims["exp"].(type) {
	case time.Time:
		return exp, nil
	case int64:
		return time.Unix(exp, 0), nil
	case float64:
		return time.Unix(int64(exp), 0), nil
	default:
		return time.Time{}, errors.New("exp claim is missing or has an unexpected type")
	}
}
