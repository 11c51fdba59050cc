package common

import (
	"strings"
)

// MaxSymbolLength caps accepted ticker symbols. NSE symbols are at most 20
// characters; the slack covers series suffixes.
const MaxSymbolLength = 32

// NormalizeSymbol trims and upper-cases a ticker symbol and rejects anything
// that is not a plausible exchange symbol.
//   - "reliance"    -> "RELIANCE"
//   - " m&m "       -> "M&M"
//   - "bajaj-auto"  -> "BAJAJ-AUTO"
//   - "", "---", "A B" -> ValidationError
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", NewValidationError("symbol", "symbol is required")
	}
	if len(s) > MaxSymbolLength {
		return "", NewValidationError("symbol", "symbol must be at most 32 characters")
	}

	hasAlnum := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			hasAlnum = true
		case r == '&', r == '-', r == '.', r == '_':
		default:
			return "", NewValidationError("symbol", "symbol contains invalid character "+quoteRune(r))
		}
	}
	if !hasAlnum {
		return "", NewValidationError("symbol", "symbol must contain a letter or digit")
	}
	return s, nil
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
