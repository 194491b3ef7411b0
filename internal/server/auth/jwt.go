// Package auth validates access tokens. Tokens are HS256 JWTs carrying the
// user id and the user's permission level; issuing them for real users is
// the job of the session service, GenerateToken exists for tooling and tests.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the standard registered claims plus uid and permission.
type Claims struct {
	jwt.RegisteredClaims
	UserID     int64 `json:"uid"`
	Permission int   `json:"permission"`
}

func GenerateToken(id models.Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:     id.UID,
		Permission: id.Permission,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns the identity it carries.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// validation yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, common.ErrTokenExpired
		}
		return models.Identity{}, common.ErrInvalidToken
	}

	if !token.Valid {
		return models.Identity{}, common.ErrInvalidToken
	}

	return models.Identity{UID: claims.UserID, Permission: claims.Permission}, nil
}

// Validator binds ParseToken to a secret.
type Validator struct {
	secret []byte
}

func NewValidator(secretKey string) *Validator {
	return &Validator{secret: []byte(secretKey)}
}

func (v *Validator) Validate(token string) (models.Identity, error) {
	return ParseToken(token, v.secret)
}
