package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-trekbook/internal/db"
	"backend-trekbook/internal/notify"

	"github.com/jackc/pgx/v5"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrTrekNotFound = errors.New("trek not found")
	ErrNotFound     = errors.New("booking not found")
)

type Service struct {
	db  db.Querier
	hub *notify.Hub
}

func NewService(db db.Querier, hub *notify.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// SyncDrafts resizes the draft list to count: growth appends blank drafts,
// shrink truncates from the tail. Index 0 is the primary participant and is
// never displaced by a resize.
func SyncDrafts(drafts []Draft, count int) []Draft {
	if count < 1 {
		count = 1
	}
	if len(drafts) == 0 {
		drafts = []Draft{{IsPrimaryUser: true}}
	}
	for len(drafts) < count {
		drafts = append(drafts, Draft{})
	}
	if len(drafts) > count {
		drafts = drafts[:count]
	}
	return drafts
}

// Validate enforces the all-or-nothing precondition: a trek date and every
// required field on every draft. The first missing field wins and names the
// participant index.
func Validate(date time.Time, drafts []Draft) error {
	if date.IsZero() {
		return fmt.Errorf("%w: trek_date required", ErrValidation)
	}
	if len(drafts) == 0 {
		return fmt.Errorf("%w: at least one participant required", ErrValidation)
	}
	for i, d := range drafts {
		switch {
		case d.Name == "":
			return fmt.Errorf("%w: participant %d: name required", ErrValidation, i+1)
		case d.Email == "":
			return fmt.Errorf("%w: participant %d: email required", ErrValidation, i+1)
		case d.PhoneNumber == "":
			return fmt.Errorf("%w: participant %d: phone_number required", ErrValidation, i+1)
		case d.Address == "":
			return fmt.Errorf("%w: participant %d: address required", ErrValidation, i+1)
		}
	}
	primaries := 0
	for _, d := range drafts {
		if d.IsPrimaryUser {
			primaries++
		}
	}
	if primaries != 1 || !drafts[0].IsPrimaryUser {
		return fmt.Errorf("%w: exactly one primary participant required at position 1", ErrValidation)
	}
	return nil
}

// PrimaryDraft builds the index-0 draft from the user's profile. A missing
// profile row yields a draft carrying only the account email.
func (s *Service) PrimaryDraft(ctx context.Context, userID, fallbackEmail string) (Draft, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(full_name,''), COALESCE(email,''), COALESCE(phone_number,''), COALESCE(address,'')
		FROM profiles WHERE id=$1
	`, userID)

	d := Draft{IsPrimaryUser: true}
	err := row.Scan(&d.Name, &d.Email, &d.PhoneNumber, &d.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		d.Email = fallbackEmail
		return d, nil
	}
	if err != nil {
		return Draft{}, err
	}
	if d.Email == "" {
		d.Email = fallbackEmail
	}
	return d, nil
}

// Quote prices the current form state without writing anything.
func (s *Service) Quote(ctx context.Context, trekID int64, count int, drafts []Draft) (Quote, error) {
	price, err := s.trekPrice(ctx, s.db, trekID)
	if err != nil {
		return Quote{}, err
	}
	drafts = SyncDrafts(drafts, count)
	return Quote{
		TrekID:           trekID,
		PricePerPerson:   price,
		ParticipantCount: len(drafts),
		TotalAmount:      price * float64(len(drafts)),
		Drafts:           drafts,
	}, nil
}

// Create writes the booking and all its participants in one transaction.
// Any failure rolls the whole booking back; a participant-less booking can
// not be left behind. The amount is locked in from the trek price read
// inside the same transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	if err := Validate(in.TrekDate, in.Drafts); err != nil {
		return Booking{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Booking{}, err
	}
	defer tx.Rollback(ctx)

	price, err := s.trekPrice(ctx, tx, in.TrekID)
	if err != nil {
		return Booking{}, err
	}

	b := Booking{
		UserID:            in.UserID,
		TrekID:            in.TrekID,
		TrekDate:          in.TrekDate,
		TotalParticipants: len(in.Drafts),
		TotalAmount:       price * float64(len(in.Drafts)),
		Status:            StatusPending,
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (user_id, trek_id, trek_date, total_participants, total_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, b.UserID, b.TrekID, b.TrekDate, b.TotalParticipants, b.TotalAmount, b.Status)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return Booking{}, err
	}

	for _, d := range in.Drafts {
		_, err := tx.Exec(ctx, `
			INSERT INTO participants (booking_id, name, email, phone_number, address, is_primary_user)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, b.ID, d.Name, d.Email, d.PhoneNumber, d.Address, d.IsPrimaryUser)
		if err != nil {
			return Booking{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Booking{}, err
	}

	s.publish(StatusEvent{BookingID: b.ID, UserID: b.UserID, Status: b.Status})
	return b, nil
}

// ListForUser returns the user's bookings joined with trek display fields,
// newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.user_id, b.trek_id, b.trek_date, b.total_participants, b.total_amount, b.status, b.created_at,
		       t.title, COALESCE(t.duration,''), COALESCE(t.difficulty,'')
		FROM bookings b
		JOIN treks t ON t.id = b.trek_id
		WHERE b.user_id=$1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	var ids []int64
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.TrekID, &b.TrekDate, &b.TotalParticipants, &b.TotalAmount, &b.Status, &b.CreatedAt,
			&b.Trek.Title, &b.Trek.Duration, &b.Trek.Difficulty); err != nil {
			return nil, err
		}
		ids = append(ids, b.ID)
		bookings = append(bookings, b)
	}

	participants, err := s.loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		bookings[i].Participants = participants[bookings[i].ID]
	}
	return bookings, nil
}

// UpdateStatus is the transition surface between pending, confirmed and
// cancelled. The update is scoped to the caller's own booking; a foreign id
// looks the same as a missing one.
func (s *Service) UpdateStatus(ctx context.Context, id int64, userID, status string) (Booking, error) {
	if status != StatusPending && status != StatusConfirmed && status != StatusCancelled {
		return Booking{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	row := s.db.QueryRow(ctx, `
		UPDATE bookings SET status=$2 WHERE id=$1 AND user_id=$3
		RETURNING id, user_id, trek_id, trek_date, total_participants, total_amount, status, created_at
	`, id, status, userID)

	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.TrekID, &b.TrekDate, &b.TotalParticipants, &b.TotalAmount, &b.Status, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, err
	}

	s.publish(StatusEvent{BookingID: b.ID, UserID: b.UserID, Status: b.Status})
	return b, nil
}

func (s *Service) trekPrice(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, trekID int64) (float64, error) {
	var price float64
	err := q.QueryRow(ctx, `SELECT COALESCE(price,0) FROM treks WHERE id=$1`, trekID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrTrekNotFound
	}
	if err != nil {
		return 0, err
	}
	return price, nil
}

func (s *Service) loadParticipants(ctx context.Context, bookingIDs []int64) (map[int64][]Participant, error) {
	if len(bookingIDs) == 0 {
		return map[int64][]Participant{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, name, email, phone_number, address, COALESCE(is_primary_user,false)
		FROM participants WHERE booking_id = ANY($1)
		ORDER BY id
	`, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := map[int64][]Participant{}
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Email, &p.PhoneNumber, &p.Address, &p.IsPrimaryUser); err != nil {
			return nil, err
		}
		participants[p.BookingID] = append(participants[p.BookingID], p)
	}
	return participants, nil
}

func (s *Service) publish(event StatusEvent) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(event)
	s.hub.Publish(event.UserID, payload)
}
