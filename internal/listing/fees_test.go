package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "seatswap/pkg/domain-errors"
)

func TestComputeFees(t *testing.T) {
	tests := []struct {
		name            string
		payout          float64
		airlineFee      float64
		platformFeeRate float64
		want            FeeBreakdown
		wantErr         bool
	}{
		{
			name:            "reference breakdown",
			payout:          100,
			airlineFee:      50,
			platformFeeRate: 0.025,
			want:            FeeBreakdown{Payout: 100, AirlineFee: 50, PlatformFee: 2.50, TotalPrice: 152.50},
		},
		{
			name:            "platform fee rounds to cents",
			payout:          333.33,
			airlineFee:      50,
			platformFeeRate: 0.025,
			want:            FeeBreakdown{Payout: 333.33, AirlineFee: 50, PlatformFee: 8.33, TotalPrice: 391.66},
		},
		{
			name:            "zero fees pass through the payout",
			payout:          80,
			airlineFee:      0,
			platformFeeRate: 0,
			want:            FeeBreakdown{Payout: 80, TotalPrice: 80},
		},
		{
			name:            "zero payout is rejected",
			payout:          0,
			airlineFee:      50,
			platformFeeRate: 0.025,
			wantErr:         true,
		},
		{
			name:            "negative payout is rejected",
			payout:          -10,
			airlineFee:      50,
			platformFeeRate: 0.025,
			wantErr:         true,
		},
		{
			name:            "negative rate is rejected",
			payout:          100,
			airlineFee:      50,
			platformFeeRate: -0.025,
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFees(tt.payout, tt.airlineFee, tt.platformFeeRate)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeFeesIsDeterministic(t *testing.T) {
	a, err := ComputeFees(123.45, 50, 0.025)
	require.NoError(t, err)
	b, err := ComputeFees(123.45, 50, 0.025)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
