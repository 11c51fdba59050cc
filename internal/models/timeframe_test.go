package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/stockmcp/internal/common"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		input   string
		want    Timeframe
		wantErr bool
	}{
		{"", TimeframeMedium, false},
		{"short", TimeframeShort, false},
		{"medium", TimeframeMedium, false},
		{"long", TimeframeLong, false},
		{" Long ", TimeframeLong, false},
		{"quarterly", "", true},
		{"medium; DROP TABLE Stock", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeframe(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, common.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeframeLabel(t *testing.T) {
	assert.Equal(t, "Medium", TimeframeMedium.Label())
	assert.Equal(t, "", Timeframe("").Label())
}
