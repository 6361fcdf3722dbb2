// internal/services/payment_service_test.go
package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

// fakeGateway records order-creation calls instead of hitting Razorpay.
type fakeGateway struct {
	calls        int
	lastAmount   int64
	lastCurrency string
	err          error
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.calls++
	g.lastAmount = amountPaise
	g.lastCurrency = currency
	return fmt.Sprintf("order_fake_%03d", g.calls), nil
}

func signPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newPaymentFixture(t *testing.T) (*PaymentService, *CreditService, *fakeGateway, *gorm.DB, *models.User) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	credits := NewCreditService(db, noCache())
	gw := &fakeGateway{}
	svc := NewPaymentServiceWithGateway(db, cfg, credits, noCache(), gw)

	// Intrastate B2B customer relative to the KA/IN seller.
	user := createTestUser(t, db, "KA", "IN", "29ABCDE1234F1Z5")
	return svc, credits, gw, db, user
}

func TestQuoteCustomPackage_IntrastateB2B(t *testing.T) {
	svc, _, _, _, user := newPaymentFixture(t)

	quote, err := svc.QuoteCustomPackage(context.Background(), user.ID, 5000)
	require.NoError(t, err)

	assert.EqualValues(t, 45000, quote.Package.BasePaise)
	assert.EqualValues(t, 10, quote.Package.DiscountPercent)
	assert.EqualValues(t, 4500, quote.Package.SavingsPaise)
	assert.EqualValues(t, 40500, quote.Package.FinalPaise)
	assert.Equal(t, "creator", quote.Package.TierName)

	assert.Equal(t, models.TaxTypeCGSTSGST, quote.Tax.TaxType)
	assert.Equal(t, models.CustomerTypeB2B, quote.Tax.CustomerType)
	assert.EqualValues(t, 3645, quote.Tax.CGSTPaise)
	assert.EqualValues(t, 3645, quote.Tax.SGSTPaise)
	assert.EqualValues(t, 47790, quote.Tax.TotalPaise)
}

func TestQuoteCustomPackage_UnknownLocationFallsBackToIGST(t *testing.T) {
	svc, _, _, db, _ := newPaymentFixture(t)

	user := createTestUser(t, db, "", "", "")
	quote, err := svc.QuoteCustomPackage(context.Background(), user.ID, 5000)
	require.NoError(t, err)

	assert.Equal(t, models.TaxTypeIGST, quote.Tax.TaxType)
	assert.Equal(t, models.CustomerTypeB2C, quote.Tax.CustomerType)
	assert.EqualValues(t, 7290, quote.Tax.IGSTPaise)
	assert.EqualValues(t, 47790, quote.Tax.TotalPaise)
}

func TestQuoteCustomPackage_Bounds(t *testing.T) {
	svc, _, _, _, user := newPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.QuoteCustomPackage(ctx, user.ID, 50)
	assert.Error(t, err)

	_, err = svc.QuoteCustomPackage(ctx, user.ID, 200000)
	assert.Error(t, err)
}

func TestCreateOrder_ChargesExactTotal(t *testing.T) {
	svc, _, gw, db, user := newPaymentFixture(t)

	resp, err := svc.CreateOrder(context.Background(), user.ID, &CreateOrderRequest{Credits: 5000})
	require.NoError(t, err)

	// The gateway is asked for exactly base+GST, nothing recomputed.
	assert.EqualValues(t, 47790, gw.lastAmount)
	assert.Equal(t, "INR", gw.lastCurrency)
	assert.Equal(t, "order_fake_001", resp.ProviderOrderID)
	assert.EqualValues(t, 47790, resp.AmountPaise)

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, resp.OrderID).Error)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.EqualValues(t, 5000, order.Credits)
	assert.EqualValues(t, 7290, order.GSTPaise)
}

func TestVerifyPayment_GrantsCreditsOnce(t *testing.T) {
	svc, credits, _, db, user := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := svc.CreateOrder(ctx, user.ID, &CreateOrderRequest{Credits: 5000})
	require.NoError(t, err)

	req := &VerifyPaymentRequest{
		ProviderOrderID:   resp.ProviderOrderID,
		ProviderPaymentID: "pay_001",
		Signature:         signPayment(resp.ProviderOrderID, "pay_001", "rzp_test_secret"),
	}

	order, err := svc.VerifyPayment(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)

	balance, err := credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, balance)

	var invoice models.Invoice
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.EqualValues(t, 40500, invoice.BasePaise)
	assert.EqualValues(t, 7290, invoice.GSTPaise)
	assert.EqualValues(t, 47790, invoice.TotalPaise)
	assert.Equal(t, user.GSTIN, invoice.GSTIN)
	assert.NotEmpty(t, invoice.Number)

	// Re-verifying a paid order is a no-op, not a double grant.
	again, err := svc.VerifyPayment(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, again.Status)

	balance, err = credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, balance)
}

func TestVerifyPayment_BadSignatureThenRetry(t *testing.T) {
	svc, credits, _, db, user := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := svc.CreateOrder(ctx, user.ID, &CreateOrderRequest{Credits: 5000})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, user.ID, &VerifyPaymentRequest{
		ProviderOrderID:   resp.ProviderOrderID,
		ProviderPaymentID: "pay_001",
		Signature:         "forged",
	})
	require.Error(t, err)

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, resp.OrderID).Error)
	assert.Equal(t, models.OrderStatusFailed, order.Status)

	balance, err := credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, balance, "no credits on a rejected signature")

	// A failed session can be retried with a valid signature.
	paid, err := svc.VerifyPayment(ctx, user.ID, &VerifyPaymentRequest{
		ProviderOrderID:   resp.ProviderOrderID,
		ProviderPaymentID: "pay_002",
		Signature:         signPayment(resp.ProviderOrderID, "pay_002", "rzp_test_secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)

	balance, err = credits.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, balance)
}

func TestDismissOrder(t *testing.T) {
	svc, _, _, db, user := newPaymentFixture(t)
	ctx := context.Background()

	resp, err := svc.CreateOrder(ctx, user.ID, &CreateOrderRequest{Credits: 5000})
	require.NoError(t, err)

	require.NoError(t, svc.DismissOrder(user.ID, &DismissOrderRequest{
		ProviderOrderID: resp.ProviderOrderID,
		Reason:          "user closed the widget",
	}))

	var order models.PaymentOrder
	require.NoError(t, db.First(&order, resp.OrderID).Error)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Equal(t, "user closed the widget", order.FailureReason)

	// Paid orders cannot be dismissed.
	paidResp, err := svc.CreateOrder(ctx, user.ID, &CreateOrderRequest{Credits: 5000})
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, user.ID, &VerifyPaymentRequest{
		ProviderOrderID:   paidResp.ProviderOrderID,
		ProviderPaymentID: "pay_003",
		Signature:         signPayment(paidResp.ProviderOrderID, "pay_003", "rzp_test_secret"),
	})
	require.NoError(t, err)

	err = svc.DismissOrder(user.ID, &DismissOrderRequest{ProviderOrderID: paidResp.ProviderOrderID})
	assert.Error(t, err)
}
