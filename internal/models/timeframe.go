package models

import (
	"strings"

	"github.com/ternarybob/stockmcp/internal/common"
)

// Timeframe selects one member of the short/medium/long metric family.
type Timeframe string

const (
	TimeframeShort  Timeframe = "short"
	TimeframeMedium Timeframe = "medium"
	TimeframeLong   Timeframe = "long"
)

// DefaultTimeframe is used whenever a caller omits the timeframe.
const DefaultTimeframe = TimeframeMedium

// Timeframes lists the closed set in display order.
var Timeframes = []Timeframe{TimeframeShort, TimeframeMedium, TimeframeLong}

// ParseTimeframe resolves a caller-supplied timeframe against the closed set.
// Empty input yields the default; anything outside the set is a validation error.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return DefaultTimeframe, nil
	case TimeframeShort, TimeframeMedium, TimeframeLong:
		return tf, nil
	default:
		return "", common.NewValidationError("timeframe", "timeframe must be one of short, medium, long; got "+strings.TrimSpace(s))
	}
}

func (t Timeframe) String() string {
	return string(t)
}

// Label is the capitalised name used in report headings.
func (t Timeframe) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}
