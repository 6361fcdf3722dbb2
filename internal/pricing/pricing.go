// internal/pricing/pricing.go
package pricing

import (
	"math"
	"sort"
)

// Tier maps a credit threshold to the discount applied from that quantity
// upward. Tables are kept sorted ascending by threshold; when two tiers share
// a threshold the later (larger-discount slot) one wins.
type Tier struct {
	Threshold       int64   `json:"threshold"`
	DiscountPercent float64 `json:"discount_percent"`
	Name            string  `json:"name"`
}

// Config is the remotely-configurable pricing table. PricePerCreditPaise is
// the undiscounted rate in paise per credit.
type Config struct {
	PricePerCreditPaise int64  `json:"price_per_credit_paise"`
	MinCredits          int64  `json:"min_credits"`
	MaxCredits          int64  `json:"max_credits"`
	Tiers               []Tier `json:"tiers"`
}

// CreditPackage is the derived quote for a requested credit quantity. It is
// recomputed on every change and never persisted as-is; the paid order keeps
// its own snapshot.
type CreditPackage struct {
	Credits         int64   `json:"credits"`
	BasePaise       int64   `json:"base_paise"`
	DiscountPercent float64 `json:"discount_percent"`
	SavingsPaise    int64   `json:"savings_paise"`
	FinalPaise      int64   `json:"final_paise"`
	TierName        string  `json:"tier_name"`
}

// DefaultTiers is the stock discount ladder used until an operator overrides
// the table.
func DefaultTiers() []Tier {
	return []Tier{
		{Threshold: 0, DiscountPercent: 0, Name: "starter"},
		{Threshold: 5000, DiscountPercent: 10, Name: "creator"},
		{Threshold: 25000, DiscountPercent: 15, Name: "studio"},
	}
}

// ClampCredits bounds a requested quantity to the configured purchase window.
func ClampCredits(credits int64, cfg Config) int64 {
	if credits < cfg.MinCredits {
		return cfg.MinCredits
	}
	if credits > cfg.MaxCredits {
		return cfg.MaxCredits
	}
	return credits
}

// CalculateCustomPrice computes the tiered quote for a credit quantity.
// Selection picks the highest tier whose threshold <= credits; below the
// smallest threshold the discount is zero, above the largest the top tier
// applies uncapped. Pure and O(len(tiers)); callers re-run it per keystroke.
func CalculateCustomPrice(credits int64, cfg Config) CreditPackage {
	tiers := make([]Tier, len(cfg.Tiers))
	copy(tiers, cfg.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Threshold < tiers[j].Threshold })

	var selected *Tier
	for i := range tiers {
		if tiers[i].Threshold <= credits {
			// >= keeps the later entry on equal thresholds
			if selected == nil || tiers[i].Threshold >= selected.Threshold {
				selected = &tiers[i]
			}
		}
	}

	pkg := CreditPackage{Credits: credits}
	pkg.BasePaise = credits * cfg.PricePerCreditPaise

	if selected != nil {
		pkg.DiscountPercent = selected.DiscountPercent
		pkg.TierName = selected.Name
	}

	pkg.SavingsPaise = discountPaise(pkg.BasePaise, pkg.DiscountPercent)
	pkg.FinalPaise = pkg.BasePaise - pkg.SavingsPaise
	return pkg
}

// discountPaise applies a percentage in integer paise with round-half-up.
// The percent is first fixed to basis points so 12.5% stays exact.
func discountPaise(basePaise int64, percent float64) int64 {
	bp := int64(math.Round(percent * 100))
	return roundHalfUpDiv(basePaise*bp, 10000)
}

// roundHalfUpDiv divides non-negative integers rounding halves up.
func roundHalfUpDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
