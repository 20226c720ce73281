package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityVerifier checks bearer tokens issued by the identity provider and
// exposes their decoded claims. Nothing downstream parses tokens itself.
type IdentityVerifier struct {
	auth *jwtauth.JWTAuth
}

// NewIdentityVerifier builds an HMAC verifier from a shared secret.
func NewIdentityVerifier(alg string, key []byte) *IdentityVerifier {
	return &IdentityVerifier{auth: jwtauth.New(alg, key, nil)}
}

// NewIdentityVerifierFromConfig picks the key by algorithm family: HS* uses
// secret, RS*/PS*/ES*/EdDSA parse publicKeyPEM. Asymmetric verifiers cannot Issue.
func NewIdentityVerifierFromConfig(alg string, secret, publicKeyPEM []byte) (*IdentityVerifier, error) {
	var (
		pub interface{}
		err error
	)
	switch {
	case strings.HasPrefix(alg, "HS"):
		if len(secret) == 0 {
			return nil, fmt.Errorf("identity: %s needs a secret", alg)
		}
		return NewIdentityVerifier(alg, secret), nil
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		pub, err = jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	case strings.HasPrefix(alg, "ES"):
		pub, err = jwt.ParseECPublicKeyFromPEM(publicKeyPEM)
	case alg == "EdDSA":
		pub, err = jwt.ParseEdPublicKeyFromPEM(publicKeyPEM)
	default:
		return nil, fmt.Errorf("identity: unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("identity: parse %s public key: %w", alg, err)
	}
	return &IdentityVerifier{auth: jwtauth.New(alg, nil, pub)}, nil
}

// JWTAuth backs the router's jwtauth.Verifier middleware.
func (v *IdentityVerifier) JWTAuth() *jwtauth.JWTAuth {
	return v.auth
}

func (v *IdentityVerifier) Verify(ctx context.Context, tokenString string) (model.Identity, error) {
	if tokenString == "" {
		return model.Identity{}, fmt.Errorf("token is required: %w", common.ErrUnauthorized)
	}
	token, err := jwtauth.VerifyToken(v.auth, tokenString)
	if err != nil {
		return model.Identity{}, fmt.Errorf("invalid or expired token: %w", common.ErrUnauthorized)
	}
	claims, err := token.AsMap(ctx)
	if err != nil {
		return model.Identity{}, fmt.Errorf("unreadable token claims: %w", common.ErrUnauthorized)
	}
	return IdentityFromClaims(claims)
}

// Issue signs an identity token. The provider normally does this; tests and local tooling use it too.
func (v *IdentityVerifier) Issue(id model.Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     id.Subject,
		"email":   id.Email,
		"name":    id.Name,
		"picture": id.Photo,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := v.auth.Encode(claims)
	return tokenString, err
}

func IdentityFromClaims(claims jwt.MapClaims) (model.Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return model.Identity{}, fmt.Errorf("sub claim is missing: %w", common.ErrUnauthorized)
	}
	id := model.Identity{Subject: sub}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Photo, _ = claims["picture"].(string)
	return id, nil
}

var errNoIdentity = errors.New("no identity in context")

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (model.Identity, error) {
	id, ok := ctx.Value(identityCtxKey{}).(model.Identity)
	if !ok {
		return model.Identity{}, errNoIdentity
	}
	return id, nil
}
