// Package es provides the ECDSA signature algorithm.
package es

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"math/big"

	"github.com/jwengine/jwengine/jwa"
	"github.com/jwengine/jwengine/jwk/jwktypes"
	"github.com/jwengine/jwengine/sig"
)

var es256 = &algorithm{
	alg:  jwa.ES256,
	hash: crypto.SHA256,
	crv:  elliptic.P256(),
}

// New256 returns the ES256 (ECDSA using P-256 and SHA-256) signature algorithm.
func New256() sig.Algorithm {
	return es256
}

var es384 = &algorithm{
	alg:  jwa.ES384,
	hash: crypto.SHA384,
	crv:  elliptic.P384(),
}

// New384 returns the ES384 (ECDSA using P-384 and SHA-384) signature algorithm.
func New384() sig.Algorithm {
	return es384
}

var es512 = &algorithm{
	alg:  jwa.ES512,
	hash: crypto.SHA512,
	crv:  elliptic.P521(),
}

// New512 returns the ES512 (ECDSA using P-521 and SHA-512) signature algorithm.
func New512() sig.Algorithm {
	return es512
}

func init() {
	jwa.RegisterSignatureAlgorithm(jwa.ES256, New256)
	jwa.RegisterSignatureAlgorithm(jwa.ES384, New384)
	jwa.RegisterSignatureAlgorithm(jwa.ES512, New512)
}

var _ sig.Algorithm = (*algorithm)(nil)

type algorithm struct {
	alg  jwa.SignatureAlgorithm
	hash crypto.Hash
	crv  elliptic.Curve
}

var _ sig.SigningKey = (*signingKey)(nil)

type signingKey struct {
	hash       crypto.Hash
	crv        elliptic.Curve
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	canSign    bool
	canVerify  bool
}

// NewSigningKey implements [github.com/jwengine/jwengine/sig.Algorithm].
func (alg *algorithm) NewSigningKey(key sig.Key) sig.SigningKey {
	priv := key.PrivateKey()
	pub := key.PublicKey()

	k := &signingKey{
		hash:      alg.hash,
		crv:       alg.crv,
		canSign:   jwktypes.CanUseFor(key, jwktypes.KeyOpSign),
		canVerify: jwktypes.CanUseFor(key, jwktypes.KeyOpVerify),
	}
	if p, ok := priv.(*ecdsa.PrivateKey); ok {
		if p != nil && p.Curve != alg.crv {
			return sig.NewInvalidKey(alg.alg.String(), priv, pub)
		}
		k.privateKey = p
	} else if priv != nil {
		return sig.NewInvalidKey(alg.alg.String(), priv, pub)
	}
	if p, ok := pub.(*ecdsa.PublicKey); ok {
		if p != nil && p.Curve != alg.crv {
			return sig.NewInvalidKey(alg.alg.String(), priv, pub)
		}
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
	sum := hash.Sum(nil)

	r, s, err := ecdsa.Sign(rand.Reader, key.privateKey, sum)
	if err != nil {
		return nil, err
	}
	bits := key.crv.Params().BitSize
	size := (bits + 7) / 8

	ret := make([]byte, 2*size)
	r.FillBytes(ret[:size])
	s.FillBytes(ret[size:])
	return ret, nil
}

// Verify implements [github.com/jwengine/jwengine/sig.SigningKey].
func (key *signingKey) Verify(payload, signature []byte) error {
	if !key.hash.Available() {
		return sig.ErrHashUnavailable
	}
	if !key.canVerify {
		return sig.ErrSignUnavailable
	}

	bits := key.crv.Params().BitSize
	size := (bits + 7) / 8
	if len(signature) != 2*size {
		return sig.ErrSignatureMismatch
	}

	hash := key.hash.New()
	if _, err := hash.Write(payload); err != nil {
		return err
	}
	sum := hash.Sum(nil)

	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])
	if !ecdsa.Verify(key.publicKey, sum, r, s) {
		return sig.ErrSignatureMismatch
	}
	return nil
}
