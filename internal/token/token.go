// Package token validates and issues the shared-secret bearer tokens the
// façade authenticates with. Only the HMAC family is supported; the
// algorithm identifier comes from configuration and the verifier rejects
// tokens signed with anything else.
package token

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrUnauthenticated = errorsmod.Register("auth", 1, "unauthenticated")
	ErrBadAlgorithm    = errorsmod.Register("auth", 2, "unsupported signing algorithm")
)

type Authenticator struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(secret, algorithm string, accessMinutes, refreshMinutes int) (*Authenticator, error) {
	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, errorsmod.Wrapf(ErrBadAlgorithm, "%q", algorithm)
	}
	if secret == "" {
		return nil, errorsmod.Wrap(ErrBadAlgorithm, "empty signing secret")
	}
	return &Authenticator{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  time.Duration(accessMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshMinutes) * time.Minute,
	}, nil
}

type claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (a *Authenticator) issue(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(a.method, claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := t.SignedString(a.secret)
	if err != nil {
		return "", errorsmod.Wrap(ErrUnauthenticated, err.Error())
	}
	return signed, nil
}

// IssueAccess mints an access token for a user id.
func (a *Authenticator) IssueAccess(userID string) (string, error) {
	return a.issue(userID, "access", a.accessTTL)
}

// IssueRefresh mints a refresh token for a user id.
func (a *Authenticator) IssueRefresh(userID string) (string, error) {
	return a.issue(userID, "refresh", a.refreshTTL)
}

// Verify checks signature and expiry and returns the token's subject. Every
// failure mode collapses into ErrUnauthenticated: the caller must not be
// able to distinguish a missing token from a forged or expired one.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != a.method.Alg() {
			return nil, errorsmod.Wrapf(ErrUnauthenticated, "unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errorsmod.Wrap(ErrUnauthenticated, "invalid token")
	}
	if c.Subject == "" {
		return "", errorsmod.Wrap(ErrUnauthenticated, "missing subject")
	}
	return c.Subject, nil
}
