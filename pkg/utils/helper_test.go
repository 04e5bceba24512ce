package utils

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePGTransactionID(t *testing.T) {
	invoiceID := uuid.New()

	id := GeneratePGTransactionID("momo_qr", invoiceID, 800000.75)

	parts := strings.Split(id, "_")
	// PG MOMO QR <uuid> <amount> <hex>: the method itself contains an
	// underscore, so anchor on prefix and suffix instead of a fixed count.
	assert.True(t, strings.HasPrefix(id, "PG_MOMO_QR_"+invoiceID.String()+"_800000_"))

	suffix := parts[len(parts)-1]
	assert.Len(t, suffix, 8)
	_, err := hex.DecodeString(suffix)
	require.NoError(t, err)
}

func TestGeneratePGTransactionID_Unique(t *testing.T) {
	invoiceID := uuid.New()

	a := GeneratePGTransactionID("bank_transfer", invoiceID, 500000)
	b := GeneratePGTransactionID("bank_transfer", invoiceID, 500000)
	assert.NotEqual(t, a, b)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 7, ParseInt("7", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 1, ParseInt("0", 1))
	assert.Equal(t, 1, ParseInt("-3", 1))
}
