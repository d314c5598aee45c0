package common

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Vote adds ballot for the decision with specific 'id' and reports whether
// it has been counted. Decision accepts at most one ballot per voter, repeated
// ones are not counted and do not replace the first one.
func Vote(st KV, prefix, id []byte, b Ballot) (bool, error) {
	key := ballotKey(prefix, id, b.Voter)

	data, err := st.Get(key)
	if err != nil {
		return false, fmt.Errorf("read ballot: %w", err)
	}
	if data != nil {
		return false, nil
	}

	v := byte(0)
	if b.Support {
		v = 1
	}
	st.Put(key, []byte{v})

	return true, nil
}

// Ballots returns all ballots collected for the decision with specific 'id'.
// Ballots are ordered by the voter account.
func Ballots(st Finder, prefix, id []byte) ([]Ballot, error) {
	var (
		res  []Ballot
		ferr error
	)

	err := st.Find(append(append([]byte(nil), prefix...), id...), func(k, v []byte) bool {
		voter, err := util.Uint160DecodeBytesBE(k)
		if err != nil {
			ferr = fmt.Errorf("invalid voter key %x: %w", k, err)
			return false
		}
		res = append(res, Ballot{Voter: voter, Support: len(v) == 1 && v[0] == 1})
		return true
	})
	if err == nil {
		err = ferr
	}

	return res, err
}

func ballotKey(prefix, id []byte, voter util.Uint160) []byte {
	key := make([]byte, 0, len(prefix)+len(id)+util.Uint160Size)
	key = append(key, prefix...)
	key = append(key, id...)
	return append(key, voter.BytesBE()...)
}
