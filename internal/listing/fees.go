package listing

import (
	"math"

	dErrors "seatswap/pkg/domain-errors"
)

// FeeBreakdown is what the seller receives and what the buyer pays.
type FeeBreakdown struct {
	Payout      float64 `json:"payout"`
	AirlineFee  float64 `json:"airlineFee"`
	PlatformFee float64 `json:"platformFee"`
	TotalPrice  float64 `json:"totalPrice"`
}

// ComputeFees derives the breakdown from the seller's asking payout. The
// platform fee is a fraction of the payout; the airline change fee is a fixed
// amount passed through to the buyer. Pure function, no rounding drift beyond
// cents.
func ComputeFees(payout, airlineFee, platformFeeRate float64) (FeeBreakdown, error) {
	if payout <= 0 {
		return FeeBreakdown{}, dErrors.New(dErrors.CodeInvalidInput, "payout must be positive")
	}
	if airlineFee < 0 || platformFeeRate < 0 {
		return FeeBreakdown{}, dErrors.New(dErrors.CodeInvalidInput, "fees must be non-negative")
	}

	platformFee := roundCents(payout * platformFeeRate)
	return FeeBreakdown{
		Payout:      roundCents(payout),
		AirlineFee:  roundCents(airlineFee),
		PlatformFee: platformFee,
		TotalPrice:  roundCents(payout + airlineFee + platformFee),
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
