// internal/services/credit_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/cache"
	"github.com/chetanfram3/fram3-studio-backend/internal/database"
	"github.com/chetanfram3/fram3-studio-backend/internal/metrics"
	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

// InsufficientCreditsError carries the shortfall so the API layer can return
// the distinguished INSUFFICIENT_CREDITS code and the client can prompt a
// top-up instead of showing a generic failure.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// CreditService owns the append-only credit ledger. Every balance change is
// one new CreditTransaction row; the highest-seq row's BalanceAfter is the
// balance.
type CreditService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewCreditService(db *gorm.DB, c *cache.Cache) *CreditService {
	return &CreditService{db: db, cache: c}
}

const balanceCacheTTL = 30 * time.Second

func (s *CreditService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var cached int64
	if s.cache.GetJSON(ctx, cache.BalanceKey(userID.String()), &cached) {
		return cached, nil
	}

	last, err := s.lastEntry(s.db, userID)
	if err != nil {
		return 0, err
	}
	var balance int64
	if last != nil {
		balance = last.BalanceAfter
	}

	s.cache.SetJSON(ctx, cache.BalanceKey(userID.String()), balance, balanceCacheTTL)
	return balance, nil
}

// lastEntry resolves the ledger head by the per-user sequence; nil means an
// empty ledger.
func (s *CreditService) lastEntry(tx *gorm.DB, userID uuid.UUID) (*models.CreditTransaction, error) {
	var last models.CreditTransaction
	err := tx.Where("user_id = ?", userID).
		Order("seq DESC").
		First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return &last, nil
}

// Apply appends one ledger entry. Positive credits add, negative consume; a
// consumption that would drive the balance negative fails with
// InsufficientCreditsError and writes nothing. The user row is locked so
// concurrent entries serialize.
func (s *CreditService) Apply(ctx context.Context, userID uuid.UUID, entryType models.CreditEntryType,
	credits int64, description string, orderID, assetID *uuid.UUID) (*models.CreditTransaction, error) {

	var entry *models.CreditTransaction
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var user models.User
		if err := database.LockForUpdate(tx).
			First(&user, userID).Error; err != nil {
			return fmt.Errorf("user not found: %w", err)
		}

		last, err := s.lastEntry(tx, userID)
		if err != nil {
			return err
		}
		var balance, seq int64
		if last != nil {
			balance = last.BalanceAfter
			seq = last.Seq
		}

		next := balance + credits
		if next < 0 {
			return &InsufficientCreditsError{Required: -credits, Available: balance}
		}

		entry = &models.CreditTransaction{
			UserID:       userID,
			Seq:          seq + 1,
			EntryType:    entryType,
			Credits:      credits,
			BalanceAfter: next,
			Description:  description,
			OrderID:      orderID,
			AssetID:      assetID,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}

	if credits < 0 {
		metrics.CreditsConsumed.Add(float64(-credits))
	}
	s.cache.Delete(ctx, cache.BalanceKey(userID.String()))

	return entry, nil
}

// Consume spends credits for a generation/edit/restore operation.
func (s *CreditService) Consume(ctx context.Context, userID uuid.UUID, credits int64,
	description string, assetID *uuid.UUID) (*models.CreditTransaction, error) {
	if credits <= 0 {
		return nil, fmt.Errorf("consumption amount must be positive")
	}
	return s.Apply(ctx, userID, models.CreditEntryConsumption, -credits, description, nil, assetID)
}

func (s *CreditService) GetTransactions(userID uuid.UUID, params utils.PaginationParams) ([]models.CreditTransaction, int64, error) {
	query := s.db.Model(&models.CreditTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "seq", "credits", "entry_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.CreditTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}
