package event

import "encoding/json"

// RoleGrantedPayload captures the payload for role.granted events.
type RoleGrantedPayload struct {
	TargetID string `json:"target_id"`
	Role     string `json:"role"`
	// SelfRegistered is true when the target granted the role to themselves.
	SelfRegistered bool `json:"self_registered,omitempty"`
}

// RoleRevokedPayload captures the payload for role.revoked events.
type RoleRevokedPayload struct {
	TargetID string `json:"target_id"`
	Role     string `json:"role"`
}

// ListingCreatedPayload captures the payload for listing.created events.
type ListingCreatedPayload struct {
	ListingID       uint64 `json:"listing_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	DiscountPercent int64  `json:"discount_percent,omitempty"`
	Category        string `json:"category,omitempty"`
	IsCertifiable   bool   `json:"is_certifiable,omitempty"`
}

// ListingCertifiedPayload captures the payload for listing.certified events.
type ListingCertifiedPayload struct {
	ListingID uint64 `json:"listing_id"`
	Certified bool   `json:"certified"`
}

// OrderPlacedPayload captures the payload for order.placed events.
type OrderPlacedPayload struct {
	OrderID   uint64 `json:"order_id"`
	ListingID uint64 `json:"listing_id"`
	VendorID  string `json:"vendor_id"`
	Amount    int64  `json:"amount"`
	Deadline  int64  `json:"deadline_unix_ms"`
}

// OrderSettledPayload captures the payload for order.fulfilled and
// order.resolved_settle events.
type OrderSettledPayload struct {
	OrderID       uint64 `json:"order_id"`
	GrossAmount   int64  `json:"gross_amount"`
	PlatformShare int64  `json:"platform_share"`
	VendorShare   int64  `json:"vendor_share"`
	RatePercent   int64  `json:"rate_percent"`
}

// OrderDisputedPayload captures the payload for order.disputed events.
type OrderDisputedPayload struct {
	OrderID uint64 `json:"order_id"`
}

// OrderRefundedPayload captures the payload for order.resolved_refund events.
type OrderRefundedPayload struct {
	OrderID uint64 `json:"order_id"`
	Amount  int64  `json:"amount"`
}

// OrderMilestonePaidPayload captures the payload for order.milestone_paid events.
type OrderMilestonePaidPayload struct {
	OrderID          uint64 `json:"order_id"`
	Amount           int64  `json:"amount"`
	PlatformShare    int64  `json:"platform_share"`
	VendorShare      int64  `json:"vendor_share"`
	RatePercent      int64  `json:"rate_percent"`
	RemainingBalance int64  `json:"remaining_balance"`
}

// ConfigChangedPayload captures the payload for config.changed events.
type ConfigChangedPayload struct {
	Field    string `json:"field"`
	Category string `json:"category,omitempty"`
	Value    string `json:"value"`
}

// MarshalPayload encodes a payload struct as the event's JSON body.
func MarshalPayload(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
