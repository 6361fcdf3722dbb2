// internal/utils/crypto_test.go
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRazorpaySignature(t *testing.T) {
	const (
		orderID   = "order_MNO123"
		paymentID = "pay_PQR456"
		secret    = "test_secret"
	)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyRazorpaySignature(orderID, paymentID, valid, secret))
	assert.False(t, VerifyRazorpaySignature(orderID, paymentID, valid, "other_secret"))
	assert.False(t, VerifyRazorpaySignature(orderID, "pay_other", valid, secret))
	assert.False(t, VerifyRazorpaySignature(orderID, paymentID, "forged", secret))
	assert.False(t, VerifyRazorpaySignature(orderID, paymentID, "", secret))
}

func TestGenerateInvoiceNumber(t *testing.T) {
	at := time.Date(2026, time.August, 23, 10, 0, 0, 0, time.UTC)

	number, err := GenerateInvoiceNumber(at)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(number, "FS-20260823-"))
	assert.Len(t, number, len("FS-20260823-")+8)

	other, err := GenerateInvoiceNumber(at)
	require.NoError(t, err)
	assert.NotEqual(t, number, other)
}
