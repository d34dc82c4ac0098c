package voucher

import "time"

// Voucher is read-only from this API; codes are issued and redeemed
// out-of-band. Percentage and amount discounts are mutually exclusive by
// convention, which is why both are pointers.
type Voucher struct {
	ID                 int64      `json:"id"`
	UserID             string     `json:"user_id"`
	Code               string     `json:"code"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64   `json:"discount_amount,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	IsUsed             bool       `json:"is_used"`
	CreatedAt          time.Time  `json:"created_at"`
}
