package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatswap/internal/listing"
	"seatswap/internal/listing/gatewayclient"
	"seatswap/internal/listing/wallet"
	"seatswap/internal/platform/middleware"
	"seatswap/internal/verification"
	"seatswap/internal/verification/configstore"
	"seatswap/internal/verification/handler"
	"seatswap/internal/verification/nullifier"
	"seatswap/internal/verification/service"
	"seatswap/internal/verification/verifier"
)

// startGateway wires a full in-process gateway the way cmd/server does, on
// in-memory stores.
func startGateway(t *testing.T) (*httptest.Server, nullifier.Ledger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := nullifier.NewInMemoryLedger()
	gateway := service.New(
		configstore.NewInMemoryStore(),
		configstore.SubjectScope(),
		ledger,
		&verifier.MockVerifier{},
		logger,
		nil,
		nil,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	handler.New(gateway, logger).Register(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, ledger
}

func signals(t *testing.T, nullifierValue string, age int) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"valid":       true,
		"nullifier":   nullifierValue,
		"age":         age,
		"nationality": "DEU",
	})
	require.NoError(t, err)
	return payload
}

func TestVerifyThenReplayOverHTTP(t *testing.T) {
	ctx := context.Background()
	server, ledger := startGateway(t)
	client := gatewayclient.New(server.URL)

	configID, err := client.CreateVerification(ctx, verification.VerificationConfig{MinimumAge: 18})
	require.NoError(t, err)

	sub := verification.ProofSubmission{
		AttestationID:   "passport",
		Proof:           json.RawMessage(`{"pi_a":["0x0"]}`),
		PublicSignals:   signals(t, "N1", 25),
		UserContextData: configID,
	}

	first, err := client.Verify(ctx, sub)
	require.NoError(t, err)
	assert.True(t, first.Valid)
	assert.Equal(t, "25", first.Disclosed["age"])

	used, err := ledger.HasBeenUsed(ctx, "N1")
	require.NoError(t, err)
	assert.True(t, used)

	second, err := client.Verify(ctx, sub)
	require.NoError(t, err)
	assert.False(t, second.Valid)
	assert.Equal(t, "Proof has already been used", second.Details)
}

func TestMissingFieldsDoNotTouchTheLedger(t *testing.T) {
	server, ledger := startGateway(t)

	payload := []byte(`{"attestationId":"passport"}`)
	resp, err := http.Post(server.URL+"/verify", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	used, err := ledger.HasBeenUsed(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestFullListingFlow(t *testing.T) {
	ctx := context.Background()
	server, _ := startGateway(t)
	client := gatewayclient.New(server.URL)
	mockWallet := &wallet.MockWallet{}

	ctrl := listing.NewController(client, mockWallet, slog.New(slog.NewTextHandler(io.Discard, nil)), listing.Options{
		AirlineFee:       50,
		PlatformFeeRate:  0.025,
		ObservationDelay: 10 * time.Millisecond,
		MinimumAge:       18,
	})

	ticket := listing.Ticket{
		ID:            "T900",
		Airline:       "LH",
		FlightNumber:  "LH441",
		PNR:           "ABC123",
		PassengerName: "Max Mustermann",
		Date:          "2026-09-20",
		SellerWallet:  "0xseller",
	}
	require.NoError(t, ctrl.Start(ctx, ticket))

	scan, err := client.Verify(ctx, verification.ProofSubmission{
		AttestationID:   "passport",
		Proof:           json.RawMessage(`{"pi_a":["0x0"]}`),
		PublicSignals:   signals(t, "N-flow", 25),
		UserContextData: ctrl.Session().UserContext(),
	})
	require.NoError(t, err)
	require.True(t, scan.Valid)
	require.NoError(t, ctrl.OnProofEvent(listing.ProofEvent{Valid: scan.Valid, Details: scan.Details}))

	require.Eventually(t, func() bool {
		return ctrl.State() == listing.StatePriceInput
	}, 2*time.Second, 5*time.Millisecond)

	fees, err := ctrl.SetPrice(100)
	require.NoError(t, err)
	assert.Equal(t, 152.50, fees.TotalPrice)

	txHash, err := ctrl.Confirm(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, txHash)
	assert.Equal(t, listing.StateComplete, ctrl.State())

	minted := mockWallet.Minted()
	require.Len(t, minted, 1)
	assert.Equal(t, listing.RecordID(ticket), minted[0].RecordID)
}

func TestReplayedProofFailsTheSession(t *testing.T) {
	ctx := context.Background()
	server, _ := startGateway(t)
	client := gatewayclient.New(server.URL)

	newSession := func() *listing.Controller {
		return listing.NewController(client, &wallet.MockWallet{}, slog.New(slog.NewTextHandler(io.Discard, nil)), listing.Options{
			AirlineFee:       50,
			PlatformFeeRate:  0.025,
			ObservationDelay: 10 * time.Millisecond,
			MinimumAge:       18,
		})
	}

	ticket := listing.Ticket{
		ID: "T901", Airline: "LH", FlightNumber: "LH441", PNR: "ABC124",
		PassengerName: "Max Mustermann", Date: "2026-09-21", SellerWallet: "0xseller",
	}

	// First session consumes the nullifier.
	first := newSession()
	require.NoError(t, first.Start(ctx, ticket))
	scan, err := client.Verify(ctx, verification.ProofSubmission{
		AttestationID:   "passport",
		Proof:           json.RawMessage(`{}`),
		PublicSignals:   signals(t, "N-once", 25),
		UserContextData: first.Session().UserContext(),
	})
	require.NoError(t, err)
	require.True(t, scan.Valid)

	// Second session replays it and must end up Failed.
	second := newSession()
	require.NoError(t, second.Start(ctx, ticket))
	scan, err = client.Verify(ctx, verification.ProofSubmission{
		AttestationID:   "passport",
		Proof:           json.RawMessage(`{}`),
		PublicSignals:   signals(t, "N-once", 25),
		UserContextData: second.Session().UserContext(),
	})
	require.NoError(t, err)
	require.False(t, scan.Valid)
	require.NoError(t, second.OnProofEvent(listing.ProofEvent{Valid: scan.Valid, Details: scan.Details}))

	assert.Equal(t, listing.StateFailed, second.State())
	assert.Equal(t, "Proof has already been used", second.FailReason())
}
