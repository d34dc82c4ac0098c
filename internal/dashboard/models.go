package dashboard

import (
	"backend-trekbook/internal/booking"
	"backend-trekbook/internal/voucher"
)

// Overview is everything the dashboard shows in one response.
type Overview struct {
	Upcoming []booking.Booking `json:"upcoming"`
	History  []booking.Booking `json:"history"`
	// Unresolved holds bookings the upcoming/history rules both reject:
	// cancelled trips still in the future and pending trips already in the
	// past. They used to disappear from the dashboard entirely.
	Unresolved []booking.Booking `json:"unresolved"`
	Vouchers   []voucher.Voucher `json:"vouchers"`
}
