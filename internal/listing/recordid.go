package listing

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// RecordID derives the deterministic on-chain record identifier for a ticket.
// The marketplace contract expects the keccak-256 digest of
// "<airline>-<ticket id>-<date>", hex-encoded with a 0x prefix.
func RecordID(t Ticket) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(t.Airline + "-" + t.ID + "-" + t.Date))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
