// Package riskscore provides heuristic advisory assessment of agent actions.
// Assessment helps reviewers to prioritize flagged actions and never affects
// action statuses.
package riskscore

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Assessment labels.
const (
	LabelBenign     = "benign"
	LabelSuspicious = "suspicious"
)

const (
	baseScore        = 0.15
	transferScore    = 0.2
	largeAmountScore = 0.35
	zeroRecipient    = 0.2

	suspiciousThreshold = 0.5

	zeroAddress = "0x0000000000000000000000000000000000000000"
)

// Assessment is a result of the action assessment.
type Assessment struct {
	// Risk score in [0, 1] rounded to 2 decimal places.
	Score float64 `json:"riskScore"`
	// LabelBenign or LabelSuspicious.
	Label string `json:"label"`
	// Short reasons of the score increments.
	Reasons []string `json:"reasons"`
}

// Assess scores the action with the given parameters.
func Assess(action string, params map[string]any) Assessment {
	var (
		score   = baseScore
		reasons = []string{}
	)

	if strings.Contains(strings.ToLower(action), "transfer") {
		score += transferScore
		reasons = append(reasons, "Action involves a transfer")
	}

	if amount, ok := number(params["amount"]); ok && amount > 1 {
		score += largeAmountScore
		reasons = append(reasons, "Large notional amount")
	}

	if to, ok := params["to"]; ok && strings.ToLower(fmt.Sprint(to)) == zeroAddress {
		score += zeroRecipient
		reasons = append(reasons, "Suspicious recipient")
	}

	label := LabelBenign
	if score >= suspiciousThreshold {
		label = LabelSuspicious
	}

	return Assessment{
		Score:   math.Round(math.Min(math.Max(score, 0), 1)*100) / 100,
		Label:   label,
		Reasons: reasons,
	}
}

// number converts JSON-like value to float. Values which are not numbers or
// numeric strings are treated as absent.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
