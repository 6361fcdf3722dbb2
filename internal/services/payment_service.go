// internal/services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/cache"
	"github.com/chetanfram3/fram3-studio-backend/internal/config"
	"github.com/chetanfram3/fram3-studio-backend/internal/database"
	"github.com/chetanfram3/fram3-studio-backend/internal/metrics"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/pricing"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

// OrderGateway abstracts the payment provider's order-creation call so tests
// can run without network access.
type OrderGateway interface {
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order creation failed: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay order response missing id")
	}
	return id, nil
}

type PaymentService struct {
	db      *gorm.DB
	config  *config.Config
	credits *CreditService
	cache   *cache.Cache
	gateway OrderGateway
}

type CreateOrderRequest struct {
	Credits int64 `json:"credits" validate:"required,min=1"`
}

type CreateOrderResponse struct {
	OrderID         uuid.UUID             `json:"order_id"`
	ProviderOrderID string                `json:"provider_order_id"`
	KeyID           string                `json:"key_id"`
	Currency        string                `json:"currency"`
	AmountPaise     int64                 `json:"amount_paise"`
	Package         pricing.CreditPackage `json:"package"`
	Tax             pricing.TaxBreakdown  `json:"tax"`
}

type VerifyPaymentRequest struct {
	ProviderOrderID   string `json:"razorpay_order_id" validate:"required"`
	ProviderPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature         string `json:"razorpay_signature" validate:"required"`
}

type DismissOrderRequest struct {
	ProviderOrderID string `json:"razorpay_order_id" validate:"required"`
	Reason          string `json:"reason"`
}

// Quote pairs the derived credit package with its tax breakdown; the total
// handed to the provider is always exactly tax.TotalPaise.
type Quote struct {
	Package pricing.CreditPackage `json:"package"`
	Tax     pricing.TaxBreakdown  `json:"tax"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, credits *CreditService, c *cache.Cache) *PaymentService {
	var gateway OrderGateway
	if cfg.Payment.RazorpayKeyID != "" {
		gateway = &razorpayGateway{
			client: razorpay.NewClient(cfg.Payment.RazorpayKeyID, cfg.Payment.RazorpayKeySecret),
		}
	}

	return &PaymentService{
		db:      db,
		config:  cfg,
		credits: credits,
		cache:   c,
		gateway: gateway,
	}
}

// NewPaymentServiceWithGateway is the test seam.
func NewPaymentServiceWithGateway(db *gorm.DB, cfg *config.Config, credits *CreditService, c *cache.Cache, gw OrderGateway) *PaymentService {
	s := NewPaymentService(db, cfg, credits, c)
	s.gateway = gw
	return s
}

const pricingConfigTTL = 5 * time.Minute

// PricingConfig returns the active tier table. The table is operator-tunable,
// so reads go through the cache; defaults come from static config.
func (s *PaymentService) PricingConfig(ctx context.Context) pricing.Config {
	var cfg pricing.Config
	if s.cache.GetJSON(ctx, cache.PricingConfigKey, &cfg) && len(cfg.Tiers) > 0 {
		return cfg
	}

	cfg = pricing.Config{
		PricePerCreditPaise: s.config.Billing.PricePerCreditPaise,
		MinCredits:          s.config.Billing.MinCredits,
		MaxCredits:          s.config.Billing.MaxCredits,
		Tiers:               pricing.DefaultTiers(),
	}
	s.cache.SetJSON(ctx, cache.PricingConfigKey, cfg, pricingConfigTTL)
	return cfg
}

// QuoteCustomPackage prices a credit quantity for a user. Quantities outside
// the configured bounds are rejected before anything is sent to the provider.
func (s *PaymentService) QuoteCustomPackage(ctx context.Context, userID uuid.UUID, credits int64) (*Quote, error) {
	cfg := s.PricingConfig(ctx)

	if credits < cfg.MinCredits || credits > cfg.MaxCredits {
		return nil, fmt.Errorf("credits must be between %d and %d", cfg.MinCredits, cfg.MaxCredits)
	}

	pkg := pricing.CalculateCustomPrice(credits, cfg)
	if pkg.FinalPaise <= 0 {
		return nil, errors.New("package amount must be positive")
	}

	// A missing billing profile is not an error: tax falls back to IGST
	// against an unknown location so checkout is never blocked.
	var profile *pricing.CustomerProfile
	var user models.User
	if err := s.db.First(&user, userID).Error; err == nil && user.HasBillingProfile() {
		profile = &pricing.CustomerProfile{
			StateCode:   user.StateCode,
			CountryCode: user.CountryCode,
			GSTIN:       user.GSTIN,
		}
	}

	tax := pricing.CalculateGST(pkg.FinalPaise, profile, s.config.Billing.GSTRatePercent,
		pricing.Seller{
			StateCode:   s.config.Billing.SellerStateCode,
			CountryCode: s.config.Billing.SellerCountryCode,
		})

	return &Quote{Package: pkg, Tax: tax}, nil
}

// CreateOrder opens a checkout session: price the package, create the
// provider order for exactly base+GST, persist the session in "created".
func (s *PaymentService) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if s.gateway == nil {
		return nil, errors.New("payment gateway not configured")
	}

	quote, err := s.QuoteCustomPackage(ctx, userID, req.Credits)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		UserID:          userID,
		Credits:         quote.Package.Credits,
		TierName:        quote.Package.TierName,
		BasePaise:       quote.Package.BasePaise,
		DiscountPercent: quote.Package.DiscountPercent,
		SavingsPaise:    quote.Package.SavingsPaise,
		GSTPaise:        quote.Tax.GSTPaise,
		TotalPaise:      quote.Tax.TotalPaise,
		Currency:        s.config.Payment.Currency,
		TaxType:         quote.Tax.TaxType,
		CustomerType:    quote.Tax.CustomerType,
		TaxSnapshot:     toJSONB(quote.Tax),
		Status:          models.OrderStatusCreated,
	}

	receipt := fmt.Sprintf("credits_%s", uuid.New().String()[:13])
	providerOrderID, err := s.gateway.CreateOrder(order.TotalPaise, order.Currency, receipt,
		map[string]interface{}{
			"user_id": userID.String(),
			"credits": fmt.Sprintf("%d", order.Credits),
		})
	if err != nil {
		return nil, err
	}
	order.ProviderOrderID = providerOrderID

	if err := s.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	metrics.OrdersCreated.Inc()

	return &CreateOrderResponse{
		OrderID:         order.ID,
		ProviderOrderID: providerOrderID,
		KeyID:           s.config.Payment.RazorpayKeyID,
		Currency:        order.Currency,
		AmountPaise:     order.TotalPaise,
		Package:         quote.Package,
		Tax:             quote.Tax,
	}, nil
}

// VerifyPayment closes the checkout session. The credit-ledger delta commits
// only after the signature checks out; a bad signature marks the session
// failed, which permits a later retry.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, req *VerifyPaymentRequest) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := s.db.Where("provider_order_id = ? AND user_id = ?", req.ProviderOrderID, userID).
		First(&order).Error; err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	if order.Status == models.OrderStatusPaid {
		// Verification retries after success are idempotent.
		return &order, nil
	}

	// A failed session retried from the widget re-enters created first.
	if order.Status == models.OrderStatusFailed {
		if err := s.advance(&order, models.OrderStatusCreated); err != nil {
			return nil, err
		}
	}
	if err := s.advance(&order, models.OrderStatusProcessing); err != nil {
		return nil, err
	}

	if !utils.VerifyRazorpaySignature(req.ProviderOrderID, req.ProviderPaymentID,
		req.Signature, s.config.Payment.RazorpayKeySecret) {
		s.markFailed(&order, "signature verification failed")
		metrics.OrdersVerified.WithLabelValues("rejected").Inc()
		return nil, errors.New("payment signature verification failed")
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		now := time.Now()
		order.ProviderPaymentID = req.ProviderPaymentID
		order.Status = models.OrderStatusPaid
		order.PaidAt = &now
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		number, err := utils.GenerateInvoiceNumber(now)
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}

		var user models.User
		tx.First(&user, userID)

		invoice := &models.Invoice{
			OrderID:     order.ID,
			UserID:      userID,
			Number:      number,
			BasePaise:   order.TotalPaise - order.GSTPaise,
			GSTPaise:    order.GSTPaise,
			TotalPaise:  order.TotalPaise,
			TaxType:     order.TaxType,
			GSTIN:       user.GSTIN,
			TaxSnapshot: order.TaxSnapshot,
			IssuedAt:    now,
		}
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}

	// Ledger delta after the order is durably paid. Apply locks the user row
	// and invalidates the cached balance.
	if _, err := s.credits.Apply(ctx, userID, models.CreditEntryPurchase, order.Credits,
		fmt.Sprintf("purchase of %d credits", order.Credits), &order.ID, nil); err != nil {
		// The order is paid; the ledger write must not be silently lost.
		logrus.WithError(err).WithField("order_id", order.ID).
			Error("Paid order ledger credit failed, needs reconciliation")
		return nil, fmt.Errorf("payment verified but credit grant failed: %w", err)
	}

	metrics.OrdersVerified.WithLabelValues("confirmed").Inc()
	return &order, nil
}

// DismissOrder records a user-cancelled widget as a failed session.
func (s *PaymentService) DismissOrder(userID uuid.UUID, req *DismissOrderRequest) error {
	var order models.PaymentOrder
	if err := s.db.Where("provider_order_id = ? AND user_id = ?", req.ProviderOrderID, userID).
		First(&order).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if order.Status == models.OrderStatusPaid {
		return errors.New("order already paid")
	}

	if order.Status == models.OrderStatusCreated {
		if err := s.advance(&order, models.OrderStatusProcessing); err != nil {
			return err
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "checkout dismissed"
	}
	s.markFailed(&order, reason)
	metrics.OrdersVerified.WithLabelValues("dismissed").Inc()
	return nil
}

func (s *PaymentService) GetOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.PaymentOrder, int64, error) {
	query := s.db.Model(&models.PaymentOrder{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_paise", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.PaymentOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *PaymentService) GetInvoices(userID uuid.UUID, params utils.PaginationParams) ([]models.Invoice, int64, error) {
	query := s.db.Model(&models.Invoice{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_paise", "issued_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	return invoices, total, nil
}

func (s *PaymentService) advance(order *models.PaymentOrder, next models.OrderStatus) error {
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid checkout transition %s -> %s", order.Status, next)
	}
	order.Status = next
	return s.db.Model(order).Update("status", next).Error
}

func (s *PaymentService) markFailed(order *models.PaymentOrder, reason string) {
	order.Status = models.OrderStatusFailed
	order.FailureReason = reason
	if err := s.db.Model(order).Updates(map[string]interface{}{
		"status":         models.OrderStatusFailed,
		"failure_reason": reason,
	}).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to mark order failed")
	}
}

func toJSONB(v interface{}) models.JSONB {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
