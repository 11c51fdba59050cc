package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"RELIANCE", "RELIANCE", false},
		{"reliance", "RELIANCE", false},
		{"  tcs  ", "TCS", false},
		{"m&m", "M&M", false},
		{"bajaj-auto", "BAJAJ-AUTO", false},
		{"BRK.B", "BRK.B", false},
		{"NIFTY_50", "NIFTY_50", false},
		{"", "", true},
		{"   ", "", true},
		{"---", "", true},
		{"A B", "", true},
		{"TCS'; DROP TABLE Stock;--", "", true},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
