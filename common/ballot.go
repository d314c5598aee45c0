package common

import "github.com/nspcc-dev/neo-go/pkg/util"

// Ballot is a single vote for some decision.
type Ballot struct {
	// Account of the voter.
	Voter util.Uint160

	// Whether the voter supports the decision.
	Support bool
}
