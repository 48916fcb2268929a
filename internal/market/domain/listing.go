package domain

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/amanah-market/amanah/internal/errors"
)

var (
	// ErrInvalidPrice indicates a non-positive listing price.
	ErrInvalidPrice = apperrors.New(apperrors.CodeInvalidPrice, "listing price must be greater than zero")
	// ErrInvalidDiscount indicates a discount outside 0-100.
	ErrInvalidDiscount = apperrors.New(apperrors.CodeInvalidDiscount, "listing discount must be between 0 and 100")
	// ErrNotCertifiable indicates a certification flip on a listing the vendor never declared certifiable.
	ErrNotCertifiable = apperrors.New(apperrors.CodeNotCertifiable, "listing was not declared certifiable")
	// ErrUnavailable indicates the listing is not purchasable.
	ErrUnavailable = apperrors.New(apperrors.CodeUnavailable, "listing is not available")
)

// Listing is one catalog entry owned by a vendor. IDs are sequential and
// assigned by storage at creation.
type Listing struct {
	ID      uint64
	OwnerID string
	Name    string
	// Description is optional free-form listing text.
	Description string
	// Price is in the smallest currency unit.
	Price int64
	// DiscountPercent reduces the effective price, 0-100.
	DiscountPercent int64
	Category        string
	// IsCertifiable is declared by the vendor at creation and never changes.
	IsCertifiable bool
	// Certified is set only by a certifier, default false.
	Certified bool
	// Available reports whether the listing can be ordered. Single-unit
	// semantics: a settled sale flips this to false; disputes and refunds
	// leave it unchanged.
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateListingInput describes the fields a vendor supplies for a new listing.
type CreateListingInput struct {
	OwnerID         string
	Name            string
	Description     string
	Price           int64
	DiscountPercent int64
	Category        string
	IsCertifiable   bool
}

// CreateListing validates vendor input and builds a listing record.
// The ID is zero until storage assigns the next sequential id.
func CreateListing(input CreateListingInput, now func() time.Time) (Listing, error) {
	if now == nil {
		now = time.Now
	}
	if input.Price <= 0 {
		return Listing{}, apperrors.WithMetadata(
			apperrors.CodeInvalidPrice,
			"listing price must be greater than zero",
			map[string]string{"Price": strconv.FormatInt(input.Price, 10)},
		)
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return Listing{}, apperrors.WithMetadata(
			apperrors.CodeInvalidDiscount,
			"listing discount must be between 0 and 100",
			map[string]string{"DiscountPercent": strconv.FormatInt(input.DiscountPercent, 10)},
		)
	}

	createdAt := now().UTC()
	return Listing{
		OwnerID:         strings.TrimSpace(input.OwnerID),
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		Category:        strings.TrimSpace(input.Category),
		IsCertifiable:   input.IsCertifiable,
		Certified:       false,
		Available:       true,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// EffectivePrice is the discounted price a buyer must pay, truncating
// toward zero. Settlement parity depends on this exact truncation.
func (l Listing) EffectivePrice() int64 {
	return l.Price - l.Price*l.DiscountPercent/100
}
