package dashboard

import (
	"context"
	"time"

	"backend-trekbook/internal/booking"
	"backend-trekbook/internal/voucher"
)

type Service struct {
	bookings *booking.Service
	vouchers *voucher.Service
}

func NewService(bookings *booking.Service, vouchers *voucher.Service) *Service {
	return &Service{bookings: bookings, vouchers: vouchers}
}

func (s *Service) Overview(ctx context.Context, userID string, now time.Time) (Overview, error) {
	list, err := s.bookings.ListForUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	vouchers, err := s.vouchers.ListForUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	if vouchers == nil {
		vouchers = []voucher.Voucher{}
	}

	overview := Partition(list, now)
	overview.Vouchers = vouchers
	return overview, nil
}

// Partition splits bookings into upcoming, history and unresolved. The
// buckets are disjoint and together cover every booking:
//
//	upcoming: status != cancelled and trek_date >= now
//	history:  status == confirmed and trek_date < now
//
// Everything else (cancelled-future, pending-past) lands in unresolved
// instead of vanishing.
func Partition(bookings []booking.Booking, now time.Time) Overview {
	overview := Overview{
		Upcoming:   []booking.Booking{},
		History:    []booking.Booking{},
		Unresolved: []booking.Booking{},
	}
	for _, b := range bookings {
		switch {
		case b.Status != booking.StatusCancelled && !b.TrekDate.Before(now):
			overview.Upcoming = append(overview.Upcoming, b)
		case b.Status == booking.StatusConfirmed && b.TrekDate.Before(now):
			overview.History = append(overview.History, b)
		default:
			overview.Unresolved = append(overview.Unresolved, b)
		}
	}
	return overview
}
