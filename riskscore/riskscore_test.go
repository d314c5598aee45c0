package riskscore_test

import (
	"encoding/json"
	"testing"

	"github.com/naughty-agents/protocol-contract/riskscore"
	"github.com/stretchr/testify/require"
)

func TestAssess(t *testing.T) {
	for _, tc := range []struct {
		name     string
		action   string
		params   map[string]any
		expected riskscore.Assessment
	}{
		{
			name:   "plain action",
			action: "read_balance",
			expected: riskscore.Assessment{
				Score:   0.15,
				Label:   riskscore.LabelBenign,
				Reasons: []string{},
			},
		},
		{
			name:   "transfer",
			action: "Native_Transfer",
			params: map[string]any{"amount": json.Number("1")},
			expected: riskscore.Assessment{
				Score:   0.35,
				Label:   riskscore.LabelBenign,
				Reasons: []string{"Action involves a transfer"},
			},
		},
		{
			name:   "large transfer",
			action: "native_transfer",
			params: map[string]any{"amount": json.Number("100")},
			expected: riskscore.Assessment{
				Score:   0.7,
				Label:   riskscore.LabelSuspicious,
				Reasons: []string{"Action involves a transfer", "Large notional amount"},
			},
		},
		{
			name:   "large amount",
			action: "swap",
			params: map[string]any{"amount": "2.5"},
			expected: riskscore.Assessment{
				Score:   0.5,
				Label:   riskscore.LabelSuspicious,
				Reasons: []string{"Large notional amount"},
			},
		},
		{
			name:   "zero recipient",
			action: "transfer",
			params: map[string]any{"to": "0x0000000000000000000000000000000000000000"},
			expected: riskscore.Assessment{
				Score:   0.55,
				Label:   riskscore.LabelSuspicious,
				Reasons: []string{"Action involves a transfer", "Suspicious recipient"},
			},
		},
		{
			name:   "all factors",
			action: "transfer",
			params: map[string]any{"amount": 1000, "to": "0x0000000000000000000000000000000000000000"},
			expected: riskscore.Assessment{
				Score:   0.9,
				Label:   riskscore.LabelSuspicious,
				Reasons: []string{"Action involves a transfer", "Large notional amount", "Suspicious recipient"},
			},
		},
		{
			name:   "non-numeric amount",
			action: "mint",
			params: map[string]any{"amount": "lots", "to": "0x0000000000000000000000000000000000000001"},
			expected: riskscore.Assessment{
				Score:   0.15,
				Label:   riskscore.LabelBenign,
				Reasons: []string{},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, riskscore.Assess(tc.action, tc.params))
		})
	}
}
