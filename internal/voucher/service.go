package voucher

import (
	"context"

	"backend-trekbook/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Voucher, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, code, discount_percentage, discount_amount, valid_until, COALESCE(is_used,false), created_at
		FROM vouchers
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vouchers []Voucher
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.UserID, &v.Code, &v.DiscountPercentage, &v.DiscountAmount, &v.ValidUntil, &v.IsUsed, &v.CreatedAt); err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}
