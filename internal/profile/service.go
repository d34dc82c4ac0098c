package profile

import (
	"context"
	"errors"

	"backend-trekbook/internal/db"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get returns the stored profile, or a default draft built from the
// identity when no row exists yet. The draft is not persisted until Save.
func (s *Service) Get(ctx context.Context, userID, fallbackEmail, fallbackName string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, COALESCE(email,''), COALESCE(full_name,''), COALESCE(phone_number,''), COALESCE(address,''), COALESCE(avatar_url,''), updated_at
		FROM profiles WHERE id=$1
	`, userID)

	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.PhoneNumber, &p.Address, &p.AvatarURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{
			ID:       userID,
			Email:    fallbackEmail,
			FullName: fallbackName,
		}, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Save upserts the profile keyed by user id. Saving the same values twice
// round-trips identically apart from updated_at.
func (s *Service) Save(ctx context.Context, p Profile) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, phone_number, address, avatar_url, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now())
		ON CONFLICT (id) DO UPDATE
		SET email=EXCLUDED.email, full_name=EXCLUDED.full_name, phone_number=EXCLUDED.phone_number,
		    address=EXCLUDED.address, avatar_url=EXCLUDED.avatar_url, updated_at=now()
		RETURNING updated_at
	`, p.ID, p.Email, p.FullName, p.PhoneNumber, p.Address, p.AvatarURL)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}
