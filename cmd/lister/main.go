// Command lister drives one listing session end to end against a running
// gateway: rule registration, a simulated proof scan, pricing, and the mint.
// It exists for demos and smoke testing, not production use.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"seatswap/internal/listing"
	"seatswap/internal/listing/gatewayclient"
	"seatswap/internal/listing/wallet"
	"seatswap/internal/platform/logger"
	"seatswap/internal/verification"
)

func main() {
	gatewayURL := flag.String("gateway", "http://localhost:8080", "gateway base URL")
	payout := flag.Float64("payout", 100, "asking payout")
	age := flag.Int("age", 25, "simulated disclosed age")
	flag.Parse()

	if err := run(*gatewayURL, *payout, *age); err != nil {
		fmt.Fprintln(os.Stderr, "lister:", err)
		os.Exit(1)
	}
}

func run(gatewayURL string, payout float64, age int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.New()
	client := gatewayclient.New(gatewayURL)

	ctrl := listing.NewController(client, &wallet.MockWallet{Latency: 200 * time.Millisecond}, log, listing.Options{
		AirlineFee:        50,
		PlatformFeeRate:   0.025,
		ObservationDelay:  500 * time.Millisecond,
		MinimumAge:        18,
		ExcludedCountries: []string{"PRK"},
	})

	ticket := listing.Ticket{
		ID:            uuid.NewString(),
		Airline:       "LH",
		FlightNumber:  "LH441",
		PNR:           "ABC123",
		PassengerName: "Max Mustermann",
		Date:          time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		SellerWallet:  "0x000000000000000000000000000000000000dEaD",
	}

	if err := ctrl.Start(ctx, ticket); err != nil {
		return err
	}
	fmt.Println("session started, config", ctrl.ConfigID())

	// Simulate the proof scan the seller's wallet app would perform.
	signals, err := json.Marshal(map[string]any{
		"valid":       true,
		"nullifier":   uuid.NewString(),
		"age":         age,
		"nationality": "DEU",
	})
	if err != nil {
		return err
	}
	scan, err := client.Verify(ctx, verification.ProofSubmission{
		AttestationID:   "passport",
		Proof:           json.RawMessage(`{"pi_a":["0x0"]}`),
		PublicSignals:   signals,
		UserContextData: ctrl.Session().UserContext(),
	})
	if err != nil {
		return err
	}
	if err := ctrl.OnProofEvent(listing.ProofEvent{Valid: scan.Valid, Details: scan.Details}); err != nil {
		return err
	}
	if !scan.Valid {
		return fmt.Errorf("proof rejected: %s", scan.Details)
	}
	fmt.Println("proof verified, disclosed:", scan.Disclosed)

	if err := waitFor(ctx, ctrl, listing.StatePriceInput); err != nil {
		return err
	}

	fees, err := ctrl.SetPrice(payout)
	if err != nil {
		return err
	}
	fmt.Printf("payout %.2f, airline fee %.2f, platform fee %.2f, buyer pays %.2f\n",
		fees.Payout, fees.AirlineFee, fees.PlatformFee, fees.TotalPrice)

	txHash, err := ctrl.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Println("minted:", txHash)
	return nil
}

func waitFor(ctx context.Context, ctrl *listing.Controller, want listing.State) error {
	for {
		if ctrl.State() == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
