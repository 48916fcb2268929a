package service

import (
	"context"
	"errors"
	"strconv"

	apperrors "github.com/amanah-market/amanah/internal/errors"
	"github.com/amanah-market/amanah/internal/market/domain"
	"github.com/amanah-market/amanah/internal/market/event"
	"github.com/amanah-market/amanah/internal/market/storage"
	"github.com/amanah-market/amanah/internal/platform/grpc/pagination"
	"go.opentelemetry.io/otel/attribute"
)

// listPageConfig bounds page sizes for every list query.
var listPageConfig = pagination.PageSizeConfig{Default: 50, Max: 200}

// AddListingInput describes a vendor's new catalog entry.
type AddListingInput struct {
	Name            string
	Description     string
	Price           int64
	DiscountPercent int64
	Category        string
	IsCertifiable   bool
}

// AddListing creates a catalog listing owned by the calling vendor and
// returns the assigned sequential listing id.
func (s *Service) AddListing(ctx context.Context, callerID string, input AddListingInput) (uint64, error) {
	ctx, span := s.startSpan(ctx, "market.AddListing")
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleVendor); err != nil {
		return 0, err
	}

	listing, err := domain.CreateListing(domain.CreateListingInput{
		OwnerID:         callerID,
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		Category:        input.Category,
		IsCertifiable:   input.IsCertifiable,
	}, s.clock)
	if err != nil {
		return 0, err
	}

	listingID, err := s.stores.Listings.CreateListing(ctx, listing, func(id uint64) event.Event {
		payload, _ := event.MarshalPayload(event.ListingCreatedPayload{
			ListingID:       id,
			Name:            listing.Name,
			Price:           listing.Price,
			DiscountPercent: listing.DiscountPercent,
			Category:        listing.Category,
			IsCertifiable:   listing.IsCertifiable,
		})
		return event.Event{
			Type:        event.TypeListingCreated,
			ActorID:     callerID,
			Timestamp:   listing.CreatedAt,
			PayloadJSON: payload,
		}
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("market.listing_id", int64(listingID)))
	return listingID, nil
}

// SetCertification flips the certified flag on a certifiable listing.
// Certifier-only; the flip is idempotent.
func (s *Service) SetCertification(ctx context.Context, callerID string, listingID uint64, verified bool) error {
	ctx, span := s.startSpan(ctx, "market.SetCertification", attribute.Int64("market.listing_id", int64(listingID)))
	var err error
	defer func() { endSpan(span, err) }()

	if err = s.requireRole(ctx, callerID, domain.RoleCertifier); err != nil {
		return err
	}
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.IsCertifiable {
		err = apperrors.WithMetadata(
			apperrors.CodeNotCertifiable,
			"listing was not declared certifiable",
			map[string]string{"ListingID": strconv.FormatUint(listingID, 10)},
		)
		return err
	}
	if listing.Certified == verified {
		return nil
	}

	listing.Certified = verified
	listing.UpdatedAt = s.clock().UTC()
	payload, err := event.MarshalPayload(event.ListingCertifiedPayload{
		ListingID: listingID,
		Certified: verified,
	})
	if err != nil {
		return err
	}
	err = s.stores.Listings.UpdateListing(ctx, listing, event.Event{
		Type:        event.TypeListingCertified,
		ActorID:     callerID,
		Timestamp:   listing.UpdatedAt,
		PayloadJSON: payload,
	})
	return err
}

// GetListing returns one catalog listing.
func (s *Service) GetListing(ctx context.Context, listingID uint64) (domain.Listing, error) {
	return s.getListing(ctx, listingID)
}

// EffectivePrice returns the discounted price a buyer must pay for a listing.
func (s *Service) EffectivePrice(ctx context.Context, listingID uint64) (int64, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return 0, err
	}
	return listing.EffectivePrice(), nil
}

// ListListings returns one page of catalog listings.
func (s *Service) ListListings(ctx context.Context, pageSize int, pageToken string) (storage.ListingPage, error) {
	pageSize = pagination.ClampPageSize(pageSize, listPageConfig)
	return s.stores.Listings.ListListings(ctx, pageSize, pageToken)
}

func (s *Service) getListing(ctx context.Context, listingID uint64) (domain.Listing, error) {
	listing, err := s.stores.Listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Listing{}, apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"listing not found",
				map[string]string{"ListingID": strconv.FormatUint(listingID, 10)},
			)
		}
		return domain.Listing{}, err
	}
	return listing, nil
}
