// Package ps implements the RSASSA-PSS digital signature algorithm.
package ps

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/jwengine/jwengine/jwa"
	"github.com/jwengine/jwengine/jwk/jwktypes"
	"github.com/jwengine/jwengine/sig"
)

var ps256 = &algorithm{
	alg:  jwa.PS256,
	hash: crypto.SHA256,
}

// New256 returns the PS256 signature algorithm.
func New256() sig.Algorithm {
	return ps256
}

var ps384 = &algorithm{
	alg:  jwa.PS384,
	hash: crypto.SHA384,
}

// New384 returns the PS384 signature algorithm.
func New384() sig.Algorithm {
	return ps384
}

var ps512 = &algorithm{
	alg:  jwa.PS512,
	hash: crypto.SHA512,
}

// New512 returns the PS512 signature algorithm.
func New512() sig.Algorithm {
	return ps512
}

func init() {
	jwa.RegisterSignatureAlgorithm(jwa.PS256, New256)
	jwa.RegisterSignatureAlgorithm(jwa.PS384, New384)
	jwa.RegisterSignatureAlgorithm(jwa.PS512, New512)
}

var _ sig.Algorithm = (*algorithm)(nil)

type algorithm struct {
	alg  jwa.SignatureAlgorithm
	hash crypto.Hash
	weak bool
}

var _ sig.SigningKey = (*signingKey)(nil)

type signingKey struct {
	hash       crypto.Hash
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	canSign    bool
	canVerify  bool
}

// NewSigningKey implements [github.com/jwengine/jwengine/sig.Algorithm].
func (alg *algorithm) NewSigningKey(key sig.Key) sig.SigningKey {
	priv := key.PrivateKey()
	pub := key.PublicKey()

	k := &signingKey{
		hash:      alg.hash,
		canSign:   jwktypes.CanUseFor(key, jwktypes.KeyOpSign),
		canVerify: jwktypes.CanUseFor(key, jwktypes.KeyOpVerify),
	}
	if p, ok := priv.(*rsa.PrivateKey); ok {
		k.privateKey = p
	} else if priv != nil {
		return sig.NewInvalidKey(alg.alg.String(), priv, pub)
	}
	if p, ok := pub.(*rsa.PublicKey); ok {
		k.publicKey = p
	} else if pub != nil {
		return sig.NewInvalidKey(alg.alg.String(), priv, pub)
	}
	if k.privateKey != nil && k.publicKey == nil {
		k.publicKey = &k.privateKey.PublicKey
	}
	if k.publicKey == nil {
		return sig.NewInvalidKey(alg.alg.String(), priv, pub)
	}
	if !alg.weak {
		if size := k.publicKey.N.BitLen(); size < 2048 {
			return sig.NewErrorKey(fmt.Errorf("ps: weak key bit length: %d", size))
		}
	}
	return k
}

// Sign implements [github.com/jwengine/jwengine/sig.SigningKey].
func (key *signingKey) Sign(payload []byte) (signature []byte, err error) {
	if !key.hash.Available() {
		return nil, sig.ErrHashUnavailable
	}
	if key.privateKey == nil || !key.canSign {
		return nil, sig.ErrSignUnavailable
	}
	hash := key.hash.New()
	if _, err := hash.Write(payload); err != nil {
		return nil, err
	}
	return rsa.SignPSS(rand.Reader, key.privateKey, key.hash, hash.Sum(nil), nil)
}

// Verify implements [github.com/jwengine/jwengine/sig.SigningKey].
func (key *signingKey) Verify(payload, signature []byte) error {
	if !key.hash.Available() {
		return sig.ErrHashUnavailable
	}
	if !key.canVerify {
		return sig.ErrSignUnavailable
	}
	hash := key.hash.New()
	if _, err := hash.Write(payload); err != nil {
		return err
	}
	return rsa.VerifyPSS(key.publicKey, key.hash, hash.Sum(nil), signature, nil)
}
