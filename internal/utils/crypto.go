// internal/utils/crypto.go
package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// VerifyRazorpaySignature checks the checkout widget's callback fields. The
// expected signature is HMAC-SHA256 over "orderID|paymentID" keyed with the
// API secret. Comparison is constant time.
func VerifyRazorpaySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GenerateInvoiceNumber builds a human-referenceable invoice id like
// FS-20260823-4F2A1C9B.
func GenerateInvoiceNumber(at time.Time) (string, error) {
	suffix, err := GenerateRandomString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FS-%s-%s", at.Format("20060102"), suffix), nil
}
