package jwk

import "github.com/jwengine/jwengine/internal/jsonutils"

func parseSymmetricKey(d *jsonutils.Decoder, key *Key) {
	key.priv = d.MustBytes("k")
}

func encodeSymmetricKey(e *jsonutils.Encoder, k []byte) {
	e.Set("kty", "oct")
	e.SetBytes("k", k)
}
