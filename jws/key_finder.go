package jws

import (
	"context"
	"fmt"

	"github.com/jwengine/jwengine/jwk"
	"github.com/jwengine/jwengine/sig"
)

// KeyFinder finds a signing key for the JWS message.
type KeyFinder interface {
	FindKey(ctx context.Context, protected, unprotected *Header) (key sig.SigningKey, err error)
}

// FindKeyFunc is an adapter to allow the use of ordinary functions as KeyFinder.
type FindKeyFunc func(ctx context.Context, protected, unprotected *Header) (key sig.SigningKey, err error)

func (f FindKeyFunc) FindKey(ctx context.Context, protected, unprotected *Header) (key sig.SigningKey, err error) {
	return f(ctx, protected, unprotected)
}

// JWKKeyFinder returns a specific signing key.
type JWKKeyFinder struct {
	JWK *jwk.Key
}

func (f *JWKKeyFinder) FindKey(ctx context.Context, protected, unprotected *Header) (key sig.SigningKey, err error) {
	if headerKid, jwkKid := protected.KeyID(), f.JWK.KeyID(); headerKid != "" && jwkKid != "" && headerKid != jwkKid {
		return nil, fmt.Errorf("jws: kid mismatch: header has %q, key has %q", headerKid, jwkKid)
	}
	alg := protected.Algorithm().New()
	return alg.NewSigningKey(f.JWK), nil
}
