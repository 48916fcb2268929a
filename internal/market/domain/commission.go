package domain

import (
	"strconv"

	apperrors "github.com/amanah-market/amanah/internal/errors"
)

// ErrInvalidRate indicates a commission percentage outside 0-100.
var ErrInvalidRate = apperrors.New(apperrors.CodeInvalidRate, "commission rate must be between 0 and 100")

// CommissionPolicy resolves the effective commission percentage for a
// listing category. Plain layered data: a category-specific override wins,
// otherwise the global default applies.
type CommissionPolicy struct {
	DefaultPercent   int64
	CategoryPercents map[string]int64
}

// ValidateRate bounds-checks a commission percentage at configuration time.
func ValidateRate(percent int64) error {
	if percent < 0 || percent > 100 {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidRate,
			"commission rate must be between 0 and 100",
			map[string]string{"Percent": strconv.FormatInt(percent, 10)},
		)
	}
	return nil
}

// RateFor returns the effective commission percentage for a category.
func (p CommissionPolicy) RateFor(category string) int64 {
	if percent, ok := p.CategoryPercents[category]; ok {
		return percent
	}
	return p.DefaultPercent
}

// Split divides a gross amount between the platform and its counterparty.
// The platform share is computed first by truncation; the counterparty
// receives the exact remainder, so the two shares always reconcile to the
// gross amount.
func Split(grossAmount int64, percent int64) (platformShare, counterpartyShare int64) {
	platformShare = grossAmount * percent / 100
	counterpartyShare = grossAmount - platformShare
	return platformShare, counterpartyShare
}
