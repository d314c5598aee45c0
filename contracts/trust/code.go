package trust

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// EncodeCode returns text form of the invite code which is handed over to
// the invitee.
func EncodeCode(code util.Uint256) string {
	return base58.Encode(code.BytesBE())
}

// DecodeCode decodes invite code from the text form produced by EncodeCode.
// Little-endian hex form used by the ledger tools is accepted too.
func DecodeCode(s string) (util.Uint256, error) {
	if len(s) == 2*util.Uint256Size {
		if code, err := util.Uint256DecodeStringLE(s); err == nil {
			return code, nil
		}
	}

	b, err := base58.Decode(s)
	if err != nil {
		return util.Uint256{}, fmt.Errorf("decode base58: %w", err)
	}

	code, err := util.Uint256DecodeBytesBE(b)
	if err != nil {
		return util.Uint256{}, fmt.Errorf("invalid code: %w", err)
	}

	return code, nil
}
