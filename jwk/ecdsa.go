package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"

	"github.com/jwengine/jwengine/internal/jsonutils"
	"github.com/jwengine/jwengine/jwa"
)

// RFC7518 6.2.2. Parameters for Elliptic Curve Private Keys
func parseEcdsaKey(d *jsonutils.Decoder, key *Key) {
	var privateKey ecdsa.PrivateKey
	crv := jwa.EllipticCurve(d.MustString("crv"))
	switch crv {
	case jwa.P256:
		privateKey.Curve = elliptic.P256()
	case jwa.P384:
		privateKey.Curve = elliptic.P384()
	case jwa.P521:
		privateKey.Curve = elliptic.P521()
	default:
		d.SaveError(fmt.Errorf("jwk: unknown crv: %q", crv))
		return
	}

	// parameters for public key
	privateKey.X = new(big.Int).SetBytes(d.MustBytes("x"))
	privateKey.Y = new(big.Int).SetBytes(d.MustBytes("y"))
	key.pub = &privateKey.PublicKey
	if d.Err() == nil && !privateKey.Curve.IsOnCurve(privateKey.X, privateKey.Y) {
		d.SaveError(errors.New("jwk: invalid public key"))
		return
	}

	// parameters for private key
	if param, ok := d.GetBytes("d"); ok {
		privateKey.D = new(big.Int).SetBytes(param)
		x, y := privateKey.Curve.ScalarBaseMult(param)
		if x.Cmp(privateKey.X) != 0 || y.Cmp(privateKey.Y) != 0 {
			d.SaveError(errors.New("jwk: invalid key pair"))
			return
		}
		key.priv = &privateKey
	}

	// sanity check of the certificate
	if certs := key.x5c; len(certs) > 0 {
		cert := certs[0]
		publicKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			d.SaveError(errors.New("jwk: public key types are mismatch"))
			return
		}
		if !privateKey.PublicKey.Equal(publicKey) {
			d.SaveError(errors.New("jwk: public keys are mismatch"))
		}
	}
}

func encodeEcdsaKey(e *jsonutils.Encoder, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) {
	e.Set("kty", jwa.EC.String())

	var crv jwa.EllipticCurve
	switch pub.Curve {
	case elliptic.P256():
		crv = jwa.P256
	case elliptic.P384():
		crv = jwa.P384
	case elliptic.P521():
		crv = jwa.P521
	default:
		e.SaveError(fmt.Errorf("jwk: unknown curve: %v", pub.Curve))
		return
	}
	e.Set("crv", crv.String())

	size := (pub.Curve.Params().BitSize + 7) / 8
	e.SetBytes("x", fixedBytes(pub.X, size))
	e.SetBytes("y", fixedBytes(pub.Y, size))
	if priv != nil {
		e.SetBytes("d", fixedBytes(priv.D, size))
	}
}

// fixedBytes renders i as a big-endian byte slice left-padded with
// zeros to exactly size bytes, as required for EC coordinates.
func fixedBytes(i *big.Int, size int) []byte {
	buf := make([]byte, size)
	i.FillBytes(buf)
	return buf
}

func validateEcdsaPrivateKey(key *ecdsa.PrivateKey) error {
	if key == nil || key.Curve == nil {
		return errors.New("jwk: invalid ecdsa private key")
	}
	return nil
}

func validateEcdsaPublicKey(key *ecdsa.PublicKey) error {
	if key == nil || key.Curve == nil {
		return errors.New("jwk: invalid ecdsa public key")
	}
	return nil
}
