// internal/pricing/tax.go
package pricing

import (
	"math"
	"regexp"
	"strings"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
)

// CustomerProfile is the slice of the billing profile the tax engine needs.
// A nil profile means the customer's location is unknown.
type CustomerProfile struct {
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	GSTIN       string `json:"gstin"`
}

// Seller identifies the registered home jurisdiction of the platform.
type Seller struct {
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
}

// TaxBreakdown splits an order total into its GST components. Exactly one of
// (CGST,SGST) or IGST is populated, and BasePaise+GSTPaise == TotalPaise
// always holds.
type TaxBreakdown struct {
	BasePaise    int64               `json:"base_paise"`
	GSTPaise     int64               `json:"gst_paise"`
	TotalPaise   int64               `json:"total_paise"`
	TaxType      models.TaxType      `json:"tax_type"`
	IsInterState bool                `json:"is_inter_state"`
	CustomerType models.CustomerType `json:"customer_type"`
	CGSTPaise    int64               `json:"cgst_paise"`
	SGSTPaise    int64               `json:"sgst_paise"`
	IGSTPaise    int64               `json:"igst_paise"`
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// IsValidGSTIN checks the 15-character GSTIN format. Checksum validation is
// left to the tax authority; format is enough to classify B2B.
func IsValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}

// CalculateGST computes the tax breakdown for a base amount. Intrastate
// customers get the CGST+SGST split at half rate each; interstate, foreign or
// unknown-location customers get IGST at the full rate. A nil profile is not
// an error: checkout must not block on profile data that has not loaded, so
// it silently assumes an unknown location and charges IGST.
func CalculateGST(basePaise int64, profile *CustomerProfile, ratePercent float64, seller Seller) TaxBreakdown {
	b := TaxBreakdown{
		BasePaise:    basePaise,
		CustomerType: models.CustomerTypeB2C,
	}

	interState := true
	if profile != nil {
		if IsValidGSTIN(profile.GSTIN) {
			b.CustomerType = models.CustomerTypeB2B
		}
		domestic := profile.CountryCode != "" &&
			strings.EqualFold(profile.CountryCode, seller.CountryCode)
		if domestic && profile.StateCode != "" &&
			strings.EqualFold(profile.StateCode, seller.StateCode) {
			interState = false
		}
	}
	b.IsInterState = interState

	rateBP := int64(math.Round(ratePercent * 100))

	if interState {
		b.TaxType = models.TaxTypeIGST
		b.IGSTPaise = roundHalfUpDiv(basePaise*rateBP, 10000)
		b.GSTPaise = b.IGSTPaise
	} else {
		b.TaxType = models.TaxTypeCGSTSGST
		// Compute the half first so CGST == SGST and the sum stays exact.
		half := roundHalfUpDiv(basePaise*rateBP, 20000)
		b.CGSTPaise = half
		b.SGSTPaise = half
		b.GSTPaise = half * 2
	}

	b.TotalPaise = b.BasePaise + b.GSTPaise
	return b
}
