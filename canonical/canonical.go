/*
Package canonical defines canonical form of agent actions.

Action is identified by the Keccak-256 hash of its canonical form: compact
JSON object {"action":<name>,"params":<params>} with object keys in
ascending order and no insignificant whitespace. Identical actions have
identical hashes regardless of the order in which their parameters were
listed.
*/
package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"golang.org/x/crypto/sha3"
)

// ErrEmptyAction is returned for actions without name.
var ErrEmptyAction = errors.New("empty action name")

type payload struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Canonicalize returns canonical form of the action with the given
// parameters. Parameters must be JSON-encodable, numbers decoded by
// ParseParams keep their literal form.
func Canonicalize(action string, params map[string]any) ([]byte, error) {
	if action == "" {
		return nil, ErrEmptyAction
	}
	if params == nil {
		params = map[string]any{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(payload{Action: action, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// ActionHash returns Keccak-256 hash of the canonical form of the action.
// Hash bytes are stored in big-endian order, so Uint256.BytesBE returns the
// digest as is.
func ActionHash(action string, params map[string]any) (util.Uint256, error) {
	data, err := Canonicalize(action, params)
	if err != nil {
		return util.Uint256{}, err
	}

	return Keccak256(data), nil
}

// Keccak256 returns legacy Keccak-256 hash of data.
func Keccak256(data []byte) util.Uint256 {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)

	var res util.Uint256
	copy(res[:], h.Sum(nil))

	return res
}

// ParseParams decodes JSON object of the action parameters. Numbers are kept
// in their literal form.
func ParseParams(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var params map[string]any

	err := dec.Decode(&params)
	if err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode params: unexpected data after JSON object")
	}

	return params, nil
}
