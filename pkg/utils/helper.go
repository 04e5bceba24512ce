package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// GeneratePGTransactionID builds the gateway reference for a transaction.
// Format: PG_<METHOD>_<invoice_id>_<amount>_<random hex>. The random
// suffix makes collisions negligible; the unique constraint on the column
// catches the rest.
func GeneratePGTransactionID(method string, invoiceID uuid.UUID, amount float64) string {
	buf := make([]byte, 4)
	rand.Read(buf)

	return fmt.Sprintf("PG_%s_%s_%d_%s",
		strings.ToUpper(method),
		invoiceID.String(),
		int64(amount),
		hex.EncodeToString(buf),
	)
}
