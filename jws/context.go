package jws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwengine/jwengine/sig"
)

// Context controls the behavior of the Serialize* and Deserialize* family of
// functions: which "crit" extension parameters the caller is prepared to
// process, on top of "b64" which this package always understands.
type Context struct {
	acceptableCritical map[string]bool
}

// NewContext returns a new Context that accepts no critical extensions
// beyond "b64".
func NewContext() *Context {
	return &Context{
		acceptableCritical: map[string]bool{},
	}
}

// AddAcceptableCritical marks names as critical extension parameters the
// caller knows how to process.
func (ctx *Context) AddAcceptableCritical(names ...string) {
	for _, name := range names {
		ctx.acceptableCritical[name] = true
	}
}

// RemoveAcceptableCritical undoes AddAcceptableCritical.
func (ctx *Context) RemoveAcceptableCritical(names ...string) {
	for _, name := range names {
		delete(ctx.acceptableCritical, name)
	}
}

// IsAcceptableCritical reports whether name may appear in the "crit" header
// parameter without causing deserialization to fail.
func (ctx *Context) IsAcceptableCritical(name string) bool {
	if name == "b64" {
		return true
	}
	return ctx.acceptableCritical[name]
}

func (ctx *Context) checkCritical(h *Header) error {
	if h == nil {
		return nil
	}
	for _, name := range h.crit {
		if !ctx.IsAcceptableCritical(name) {
			return fmt.Errorf("jws: critical parameter %q is not understood", name)
		}
	}
	return nil
}

// checkHeaderDisjoint verifies that the protected and unprotected headers of
// a signature do not declare the same parameter twice, per RFC 7515 Section
// 5.2.
func checkHeaderDisjoint(protected, unprotected *Header) error {
	if protected == nil || unprotected == nil {
		return nil
	}
	for name := range unprotected.Raw {
		if _, ok := protected.Raw[name]; ok {
			return fmt.Errorf("jws: parameter %q is present in both protected and unprotected headers", name)
		}
	}
	return nil
}

// SerializeCompact signs payload with key and encodes the result using the
// JWS Compact Serialization.
func (ctx *Context) SerializeCompact(protected *Header, payload []byte, key sig.SigningKey) ([]byte, error) {
	if err := ctx.checkCritical(protected); err != nil {
		return nil, err
	}
	msg := newMessageFor(protected, payload)
	if err := msg.Sign(protected, nil, key); err != nil {
		return nil, err
	}
	return msg.Compact()
}

// SerializeFlattenedJSON signs payload with key and encodes the result using
// the Flattened JWS JSON Serialization.
func (ctx *Context) SerializeFlattenedJSON(protected, unprotected *Header, payload []byte, key sig.SigningKey) ([]byte, error) {
	if err := ctx.checkCritical(protected); err != nil {
		return nil, err
	}
	if err := checkHeaderDisjoint(protected, unprotected); err != nil {
		return nil, err
	}
	msg := newMessageFor(protected, payload)
	if err := msg.Sign(protected, unprotected, key); err != nil {
		return nil, err
	}
	return msg.MarshalJSON()
}

// newMessageFor builds a Message whose b64-encoding matches protected's "b64"
// header parameter.
func newMessageFor(protected *Header, payload []byte) *Message {
	if protected.Base64() {
		return NewMessage(payload)
	}
	return NewRawMessage(payload)
}

// SignEntry is one signature to produce in a General JWS JSON Serialization.
type SignEntry struct {
	Protected   *Header
	Unprotected *Header
	Key         sig.SigningKey
}

// SerializeGeneralJSON signs payload once per entry in entries and encodes
// the result using the General JWS JSON Serialization.
func (ctx *Context) SerializeGeneralJSON(payload []byte, entries []SignEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, errors.New("jws: no signatures to produce")
	}
	msg := newMessageFor(entries[0].Protected, payload)
	for i, e := range entries {
		if e.Protected.Base64() != entries[0].Protected.Base64() {
			return nil, errors.New("jws: failed to sign: b64 is mismatch between signatures")
		}
		if err := ctx.checkCritical(e.Protected); err != nil {
			return nil, err
		}
		if err := checkHeaderDisjoint(e.Protected, e.Unprotected); err != nil {
			return nil, err
		}
		if err := msg.Sign(e.Protected, e.Unprotected, e.Key); err != nil {
			return nil, fmt.Errorf("jws: failed to sign entry %d: %w", i, err)
		}
	}
	if len(msg.Signatures) == 1 {
		// Message.MarshalJSON writes a single signature in the flattened form,
		// so the one-element "signatures" array is built here.
		s := msg.Signatures[0]
		entry := map[string]any{
			"protected": string(s.rawProtected),
			"signature": string(s.b64signature),
		}
		if s.header != nil {
			entry["header"] = s.header
		}
		return json.Marshal(map[string]any{"payload": string(msg.payload), "signatures": []any{entry}})
	}
	return msg.MarshalJSON()
}

// DeserializeCompact parses data as a JWS Compact Serialization and verifies
// it using key. It is a convenience wrapper around DeserializeCompactWithSelector
// for the common single, statically-known key case.
func (ctx *Context) DeserializeCompact(data []byte, key sig.SigningKey) (protected *Header, payload []byte, err error) {
	return ctx.DeserializeCompactWithSelector(context.Background(), data, UnsecureAnyAlgorithm, FindKeyFunc(func(context.Context, *Header, *Header) (sig.SigningKey, error) {
		return key, nil
	}))
}

// DeserializeCompactWithSelector parses data as a JWS Compact Serialization
// and verifies it using the key returned by finder for the message's header.
func (ctx *Context) DeserializeCompactWithSelector(c context.Context, data []byte, algVerifier AlgorithmVerifier, finder KeyFinder) (protected *Header, payload []byte, err error) {
	msg, err := ParseCompact(data)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.checkCritical(msg.Signatures[0].protected); err != nil {
		return nil, nil, err
	}
	v := &Verifier{
		AlgorithmVerifier: algVerifier,
		KeyFinder:         finder,
	}
	protected, _, payload, err = v.Verify(c, msg)
	return protected, payload, err
}

// DeserializeJSON parses data as a JWS JSON Serialization (flattened or
// general) and verifies it using key.
func (ctx *Context) DeserializeJSON(data []byte, key sig.SigningKey) (protected, unprotected *Header, payload []byte, err error) {
	return ctx.DeserializeJSONWithSelector(context.Background(), data, UnsecureAnyAlgorithm, FindKeyFunc(func(context.Context, *Header, *Header) (sig.SigningKey, error) {
		return key, nil
	}))
}

// DeserializeJSONWithSelector parses data as a JWS JSON Serialization
// (flattened or general) and verifies it using the key returned by finder.
func (ctx *Context) DeserializeJSONWithSelector(c context.Context, data []byte, algVerifier AlgorithmVerifier, finder KeyFinder) (protected, unprotected *Header, payload []byte, err error) {
	msg, err := Parse(data)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, s := range msg.Signatures {
		if err := ctx.checkCritical(s.protected); err != nil {
			return nil, nil, nil, err
		}
		if err := checkHeaderDisjoint(s.protected, s.header); err != nil {
			return nil, nil, nil, err
		}
	}
	v := &Verifier{
		AlgorithmVerifier: algVerifier,
		KeyFinder:         finder,
	}
	return v.Verify(c, msg)
}
