package actionstatus

import (
	"fmt"
	"strings"
)

// Status is an enumeration for action states. Status only moves forward:
// Unknown -> Flagged -> Blacklisted.
type Status uint8

// Various action states.
const (
	// Unknown stands for actions never flagged for review. Agents may
	// execute them.
	Unknown Status = iota

	// Flagged stands for actions under review.
	Flagged

	// Blacklisted stands for actions rejected by the reviewers. This state
	// is terminal.
	Blacklisted
)

// String returns human-readable status name.
func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Flagged:
		return "flagged"
	case Blacklisted:
		return "blacklisted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Valid checks whether s is one of the known states.
func (s Status) Valid() bool {
	return s <= Blacklisted
}

// Parse parses status from its name or numeric form.
func Parse(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "unknown", "0":
		return Unknown, nil
	case "flagged", "1":
		return Flagged, nil
	case "blacklisted", "2":
		return Blacklisted, nil
	default:
		return 0, fmt.Errorf("unknown action status '%s'", s)
	}
}
