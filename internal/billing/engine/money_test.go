package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

func TestApplyBasisPoints(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		bp     int64
		want   int64
	}{
		{"zero rate", 100_000, 0, 0},
		{"full rate", 100_000, 10_000, 100_000},
		{"ten percent", 100_000, 1_000, 10_000},
		{"eighteen percent", 90_000, 1_800, 16_200},
		{"rounds half up", 1, 5_000, 1},         // 0.5 -> 1
		{"rounds down below half", 1, 4_999, 0}, // 0.4999 -> 0
		{"one basis point", 10_000, 1, 1},
		{"zero amount", 0, 5_000, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyBasisPoints(tc.amount, tc.bp)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyBasisPoints_RejectsOutOfRange(t *testing.T) {
	_, err := ApplyBasisPoints(1_000, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidPercentageValue)

	_, err = ApplyBasisPoints(1_000, 10_001)
	assert.ErrorIs(t, err, domain.ErrInvalidPercentageValue)

	_, err = ApplyBasisPoints(-1, 1_000)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
