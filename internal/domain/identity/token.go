package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"forge-server-go/internal/domain/identity/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

const (
	tokenIssuer   = "xyz-forge"
	tokenAudience = "xyz-forge-user"
	defaultTTL    = time.Hour
)

// Claims is the signed credential payload. TokenVersion is compared against
// the stored identity on every privileged call; Verify deliberately does not
// perform that comparison itself.
type Claims struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion int64  `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer credentials.
type TokenCodec struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenCodec builds a codec using the provided signing secret.
func NewTokenCodec(secretKey string) *TokenCodec {
	return &TokenCodec{
		secretKey: []byte(secretKey),
		ttl:       defaultTTL,
		now:       time.Now,
	}
}

// WithTTL allows customising the expiration duration.
func (tc *TokenCodec) WithTTL(ttl time.Duration) *TokenCodec {
	if ttl > 0 {
		tc.ttl = ttl
	}
	return tc
}

// WithClock overrides the time source, used by expiry tests.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		tc.now = now
	}
	return tc
}

// Issue produces a signed credential embedding the username, role and the
// caller-supplied token version. Pure given inputs and the clock: the caller
// must already have incremented and persisted the version.
func (tc *TokenCodec) Issue(username string, role model.Role, tokenVersion int64) (string, error) {
	if len(tc.secretKey) == 0 {
		return "", platformerrors.New(
			platformerrors.KindConfig, "identity.issue", "signing secret is empty")
	}

	issuedAt := tc.now()
	claims := Claims{
		Username:     username,
		Role:         string(role),
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tc.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secretKey)
	if err != nil {
		return "", platformerrors.Wrap(
			platformerrors.KindAuth, "identity.issue", "failed to sign token", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry, returning the
// embedded claims. Every failure mode collapses into the same opaque auth
// error so callers cannot distinguish which check rejected the token.
func (tc *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, platformerrors.New(
					platformerrors.KindAuth, "identity.verify", "unexpected signing method")
			}
			return tc.secretKey, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil || !token.Valid {
		return nil, invalidTokenError()
	}
	if claims.Username == "" || claims.Role == "" {
		return nil, invalidTokenError()
	}
	return claims, nil
}

func invalidTokenError() error {
	return platformerrors.New(
		platformerrors.KindAuth, "identity.verify", "invalid or expired token")
}
