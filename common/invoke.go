package common

import (
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// InvokeID returns SHA-256 of the prefix followed by all args.
func InvokeID(args [][]byte, prefix []byte) util.Uint256 {
	data := append([]byte(nil), prefix...)
	for i := range args {
		data = append(data, args[i]...)
	}

	return hash.Sha256(data)
}
