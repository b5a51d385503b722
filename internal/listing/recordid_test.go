package listing

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordID(t *testing.T) {
	ticket := Ticket{
		ID:            "T123",
		Airline:       "LH",
		FlightNumber:  "LH441",
		PNR:           "ABC123",
		PassengerName: "Max Mustermann",
		Date:          "2026-01-15",
		SellerWallet:  "0xabc",
	}

	id := RecordID(ticket)

	assert.Regexp(t, regexp.MustCompile(`^0x[0-9a-f]{64}$`), id)
	assert.Equal(t, id, RecordID(ticket), "record ids are deterministic")

	t.Run("identity fields feed the digest", func(t *testing.T) {
		changed := ticket
		changed.Date = "2026-01-16"
		assert.NotEqual(t, id, RecordID(changed))

		changed = ticket
		changed.Airline = "BA"
		assert.NotEqual(t, id, RecordID(changed))

		changed = ticket
		changed.ID = "T124"
		assert.NotEqual(t, id, RecordID(changed))
	})

	t.Run("presentation fields do not", func(t *testing.T) {
		changed := ticket
		changed.PNR = "XYZ789"
		changed.PassengerName = "Erika Mustermann"
		changed.SellerWallet = "0xdef"
		assert.Equal(t, id, RecordID(changed))
	})
}
