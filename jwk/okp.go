package jwk

import (
	"errors"
	"fmt"

	"github.com/jwengine/jwengine/internal/jsonutils"
	"github.com/jwengine/jwengine/jwa"
)

// RFC8037 2. Key Type "OKP"
func parseOKPKey(d *jsonutils.Decoder, key *Key) {
	crv := jwa.EllipticCurve(d.MustString("crv"))
	switch crv {
	case jwa.Ed25519:
		parseEd25519Key(d, key)
	case jwa.Ed448:
		parseEd448Key(d, key)
	case "":
		d.SaveError(errors.New("jwk: the crv parameter is missing"))
	default:
		d.SaveError(fmt.Errorf("jwk: unknown crv: %q", crv))
	}
}
