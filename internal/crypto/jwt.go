package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/taskboard/taskboard-go/internal/model"
)

const (
	tokenIssuer   = "taskboard"
	tokenAudience = "taskboard-api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims represents the JWT claims for taskboard authentication.
// The subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenCodec issues and verifies HS256 bearer tokens with a process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a TokenCodec whose tokens are valid for expiry.
func NewTokenCodec(secret string, expiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue creates a signed token for the given user.
func (c *TokenCodec) Issue(userID ulid.ULID, username string) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token string, returning the identity it carries.
// Expired tokens fail with ErrExpiredToken, everything else with ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrExpiredToken
		}
		return model.Identity{}, ErrInvalidToken
	}
	if !token.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	userID, err := ulid.Parse(claims.UserID)
	if err != nil || claims.Subject == "" {
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{UserID: userID, Username: claims.Subject}, nil
}
