package jws

import (
	"context"
	"errors"

	"github.com/jwengine/jwengine/jwa"
)

var errVerifyFailed = errors.New("jws: failed to verify the message")

// AlgorithmVerifier verifies the algorithm used for signing.
type AlgorithmVerifier interface {
	VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error
}

type AllowedAlgorithms []jwa.SignatureAlgorithm

func (a AllowedAlgorithms) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	for _, allowed := range a {
		if alg == allowed {
			return nil
		}
	}
	return errors.New("jws: signing algorithm is not allowed")
}

// UnsecureAnyAlgorithm is an AlgorithmVerifier that accepts any algorithm.
var UnsecureAnyAlgorithm = unsecureAnyAlgorithmVerifier{}

type unsecureAnyAlgorithmVerifier struct{}

func (unsecureAnyAlgorithmVerifier) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	return nil
}

// Verifier verifies the JWS message.
type Verifier struct {
	_NamedFieldsRequired struct{}

	AlgorithmVerifier AlgorithmVerifier
	KeyFinder         KeyFinder
}

// Verify verifies the JWS message. It returns the protected and unprotected
// headers of the signature that verified, along with the decoded payload.
func (v *Verifier) Verify(ctx context.Context, msg *Message) (protected, unprotected *Header, payload []byte, err error) {
	_ = v._NamedFieldsRequired
	if v.AlgorithmVerifier == nil || v.KeyFinder == nil {
		return nil, nil, nil, errors.New("jws: verifier is not configured")
	}

	// pre-allocate buffer
	size := 0
	for _, s := range msg.Signatures {
		if len(s.rawProtected) > size {
			size = len(s.rawProtected)
		}
	}
	size += len(msg.payload) + 1 // +1 for '.'
	buf := make([]byte, size)

	for _, s := range msg.Signatures {
		if err := v.AlgorithmVerifier.VerifyAlgorithm(ctx, s.protected.alg); err != nil {
			continue
		}
		key, err := v.KeyFinder.FindKey(ctx, s.protected, s.header)
		if err != nil {
			continue
		}
		buf = buf[:0]
		buf = append(buf, s.rawProtected...)
		buf = append(buf, '.')
		buf = append(buf, msg.payload...)
		err = key.Verify(buf, s.signature)
		if err == nil {
			var ret []byte
			if s.protected.Base64() {
				ret, err = b64Decode(msg.payload)
				if err != nil {
					return nil, nil, nil, errVerifyFailed
				}
			} else {
				ret = msg.payload
			}
			return s.protected, s.header, ret, nil
		}
	}
	return nil, nil, nil, errVerifyFailed
}

// VerifyContent verifies msg against an externally supplied payload, for use
// with the detached content form of JWS where the "payload" member is
// omitted from the serialized message.
func (v *Verifier) VerifyContent(ctx context.Context, msg *Message, payload []byte) (protected, unprotected *Header, ret []byte, err error) {
	_ = v._NamedFieldsRequired
	if v.AlgorithmVerifier == nil || v.KeyFinder == nil {
		return nil, nil, nil, errors.New("jws: verifier is not configured")
	}

	for _, s := range msg.Signatures {
		if err := v.AlgorithmVerifier.VerifyAlgorithm(ctx, s.protected.alg); err != nil {
			continue
		}
		key, err := v.KeyFinder.FindKey(ctx, s.protected, s.header)
		if err != nil {
			continue
		}

		var encoded []byte
		if s.protected.Base64() {
			encoded = b64Encode(payload)
		} else {
			encoded = payload
		}

		buf := make([]byte, 0, len(s.rawProtected)+len(encoded)+1)
		buf = append(buf, s.rawProtected...)
		buf = append(buf, '.')
		buf = append(buf, encoded...)
		if err := key.Verify(buf, s.signature); err == nil {
			return s.protected, s.header, payload, nil
		}
	}
	return nil, nil, nil, errVerifyFailed
}
