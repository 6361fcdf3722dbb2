// internal/pricing/pricing_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		PricePerCreditPaise: 9,
		MinCredits:          100,
		MaxCredits:          100000,
		Tiers: []Tier{
			{Threshold: 0, DiscountPercent: 0, Name: "starter"},
			{Threshold: 5000, DiscountPercent: 10, Name: "creator"},
			{Threshold: 25000, DiscountPercent: 15, Name: "studio"},
		},
	}
}

func TestCalculateCustomPrice(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name         string
		credits      int64
		wantBase     int64
		wantDiscount float64
		wantSavings  int64
		wantFinal    int64
		wantTier     string
	}{
		{
			// 5000 credits at 0.09/credit: base 450.00, 10% off
			name:         "tier boundary hits the larger tier",
			credits:      5000,
			wantBase:     45000,
			wantDiscount: 10,
			wantSavings:  4500,
			wantFinal:    40500,
			wantTier:     "creator",
		},
		{
			name:         "below smallest threshold gets no discount",
			credits:      1000,
			wantBase:     9000,
			wantDiscount: 0,
			wantSavings:  0,
			wantFinal:    9000,
			wantTier:     "starter",
		},
		{
			name:         "above largest threshold keeps top discount uncapped",
			credits:      90000,
			wantBase:     810000,
			wantDiscount: 15,
			wantSavings:  121500,
			wantFinal:    688500,
			wantTier:     "studio",
		},
		{
			name:         "just under a threshold stays in the lower tier",
			credits:      4999,
			wantBase:     44991,
			wantDiscount: 0,
			wantSavings:  0,
			wantFinal:    44991,
			wantTier:     "starter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := CalculateCustomPrice(tt.credits, cfg)
			assert.Equal(t, tt.credits, pkg.Credits)
			assert.Equal(t, tt.wantBase, pkg.BasePaise)
			assert.Equal(t, tt.wantDiscount, pkg.DiscountPercent)
			assert.Equal(t, tt.wantSavings, pkg.SavingsPaise)
			assert.Equal(t, tt.wantFinal, pkg.FinalPaise)
			assert.Equal(t, tt.wantTier, pkg.TierName)
		})
	}
}

func TestCalculateCustomPriceSavingsIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers = append(cfg.Tiers, Tier{Threshold: 50000, DiscountPercent: 17.5, Name: "enterprise"})

	for _, credits := range []int64{100, 4999, 5000, 5001, 24999, 25000, 50001, 99999} {
		pkg := CalculateCustomPrice(credits, cfg)
		wantSavings := roundHalfUpDiv(pkg.BasePaise*int64(pkg.DiscountPercent*100), 10000)
		assert.Equal(t, wantSavings, pkg.SavingsPaise, "credits=%d", credits)
		assert.Equal(t, pkg.BasePaise-pkg.SavingsPaise, pkg.FinalPaise, "credits=%d", credits)
	}
}

func TestCalculateCustomPriceIdempotent(t *testing.T) {
	cfg := testConfig()
	first := CalculateCustomPrice(12345, cfg)
	second := CalculateCustomPrice(12345, cfg)
	assert.Equal(t, first, second)
}

func TestCalculateCustomPriceEqualThresholdTieBreak(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers = []Tier{
		{Threshold: 5000, DiscountPercent: 8, Name: "old"},
		{Threshold: 5000, DiscountPercent: 12, Name: "promo"},
	}

	pkg := CalculateCustomPrice(6000, cfg)
	assert.Equal(t, "promo", pkg.TierName)
	assert.Equal(t, 12.0, pkg.DiscountPercent)
}

func TestCalculateCustomPriceUnsortedTiers(t *testing.T) {
	cfg := testConfig()
	cfg.Tiers = []Tier{
		{Threshold: 25000, DiscountPercent: 15, Name: "studio"},
		{Threshold: 0, DiscountPercent: 0, Name: "starter"},
		{Threshold: 5000, DiscountPercent: 10, Name: "creator"},
	}

	pkg := CalculateCustomPrice(5000, cfg)
	assert.Equal(t, "creator", pkg.TierName)
}

func TestClampCredits(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, int64(100), ClampCredits(1, cfg))
	assert.Equal(t, int64(100000), ClampCredits(500000, cfg))
	assert.Equal(t, int64(5000), ClampCredits(5000, cfg))
}

func TestRoundHalfUpDiv(t *testing.T) {
	// 4.5 paise rounds up, 4.4 rounds down
	assert.Equal(t, int64(5), roundHalfUpDiv(45, 10))
	assert.Equal(t, int64(4), roundHalfUpDiv(44, 10))
	assert.Equal(t, int64(0), roundHalfUpDiv(0, 10))
}
