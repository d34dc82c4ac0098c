package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-trekbook/internal/notify"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query error")

func validDrafts(n int) []Draft {
	drafts := []Draft{{
		Name:          "Primary User",
		Email:         "primary@example.com",
		PhoneNumber:   "9999999999",
		Address:       "12 Hill Road",
		IsPrimaryUser: true,
	}}
	for i := 1; i < n; i++ {
		drafts = append(drafts, Draft{
			Name:        "Guest",
			Email:       "guest@example.com",
			PhoneNumber: "8888888888",
			Address:     "34 Lake Road",
		})
	}
	return drafts
}

func TestSyncDraftsGrowAndShrink(t *testing.T) {
	primary := Draft{Name: "Primary", Email: "p@example.com", IsPrimaryUser: true}
	drafts := []Draft{primary}

	drafts = SyncDrafts(drafts, 3)
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}
	if drafts[0].Name != "Primary" || !drafts[0].IsPrimaryUser {
		t.Fatalf("primary displaced on grow")
	}
	if drafts[1] != (Draft{}) || drafts[2] != (Draft{}) {
		t.Fatalf("expected blank appended drafts")
	}

	drafts[2].Name = "Third"
	drafts = SyncDrafts(drafts, 2)
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts after shrink")
	}
	if drafts[0].Name != "Primary" || !drafts[0].IsPrimaryUser {
		t.Fatalf("primary displaced on shrink")
	}

	drafts = SyncDrafts(drafts, 0)
	if len(drafts) != 1 || !drafts[0].IsPrimaryUser {
		t.Fatalf("count clamps to 1 and keeps the primary")
	}
}

func TestSyncDraftsLengthInvariant(t *testing.T) {
	var drafts []Draft
	for _, count := range []int{1, 4, 2, 7, 1, 3} {
		drafts = SyncDrafts(drafts, count)
		if len(drafts) != count {
			t.Fatalf("after sync to %d got %d drafts", count, len(drafts))
		}
		if !drafts[0].IsPrimaryUser {
			t.Fatalf("index 0 lost primary flag at count %d", count)
		}
	}
}

func TestValidate(t *testing.T) {
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	if err := Validate(time.Time{}, validDrafts(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing date")
	}
	if err := Validate(date, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for no drafts")
	}

	drafts := validDrafts(3)
	drafts[1].PhoneNumber = ""
	err := Validate(date, drafts)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error")
	}
	if got := err.Error(); !strings.Contains(got, "participant 2") {
		t.Fatalf("error should name the participant index: %s", got)
	}

	noPrimary := validDrafts(2)
	noPrimary[0].IsPrimaryUser = false
	if err := Validate(date, noPrimary); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing primary")
	}

	twoPrimaries := validDrafts(2)
	twoPrimaries[1].IsPrimaryUser = true
	if err := Validate(date, twoPrimaries); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for two primaries")
	}

	if err := Validate(date, validDrafts(2)); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestCreateBooking(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(12000.0))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("user-1", int64(5), date, 2, 24000.0, StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), createdAt))
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs(int64(77), "Primary User", "primary@example.com", "9999999999", "12 Hill Road", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs(int64(77), "Guest", "guest@example.com", "8888888888", "34 Lake Road", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := NewService(mock, nil)
	b, err := svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   5,
		TrekDate: date,
		Drafts:   validDrafts(2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != 77 || b.TotalAmount != 24000.0 || b.TotalParticipants != 2 || b.Status != StatusPending {
		t.Fatalf("unexpected booking: %+v", b)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingValidationSkipsDB(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	drafts := validDrafts(2)
	drafts[1].Address = ""

	svc := NewService(mock, nil)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   5,
		TrekDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Drafts:   drafts,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// no Begin, no insert: the precondition check must gate all writes
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("database touched despite invalid input: %v", err)
	}
}

func TestCreateBookingTrekMissing(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	svc := NewService(mock, nil)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   404,
		TrekDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Drafts:   validDrafts(1),
	})
	if !errors.Is(err, ErrTrekNotFound) {
		t.Fatalf("expected ErrTrekNotFound, got %v", err)
	}
}

func TestCreateBookingParticipantFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(12000.0))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("user-1", int64(5), date, 2, 24000.0, StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), time.Now()))
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs(int64(77), "Primary User", "primary@example.com", "9999999999", "12 Hill Road", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs(int64(77), "Guest", "guest@example.com", "8888888888", "34 Lake Road", false).
		WillReturnError(errQuery)
	mock.ExpectRollback()

	svc := NewService(mock, nil)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   5,
		TrekDate: date,
		Drafts:   validDrafts(2),
	})
	if err == nil {
		t.Fatalf("expected participant insert error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected rollback, not commit: %v", err)
	}
}

func TestCreateBookingInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(12000.0))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("user-1", int64(5), date, 1, 12000.0, StatusPending).
		WillReturnError(errQuery)
	mock.ExpectRollback()

	svc := NewService(mock, nil)
	_, err = svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   5,
		TrekDate: date,
		Drafts:   validDrafts(1),
	})
	if err == nil {
		t.Fatalf("expected insert error")
	}
}

func TestCreateBookingPublishesEvent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hub := notify.NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(12000.0))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("user-1", int64(5), date, 1, 12000.0, StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), time.Now()))
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs(int64(42), "Primary User", "primary@example.com", "9999999999", "12 Hill Road", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	svc := NewService(mock, hub)
	if _, err := svc.Create(context.Background(), CreateInput{
		UserID:   "user-1",
		TrekID:   5,
		TrekDate: date,
		Drafts:   validDrafts(1),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case payload := <-client.Send:
		var event StatusEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.BookingID != 42 || event.Status != StatusPending {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for booking event")
	}
}

func TestQuote(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(12000.0))

	svc := NewService(mock, nil)
	quote, err := svc.Quote(context.Background(), 5, 3, validDrafts(1))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.ParticipantCount != 3 || quote.TotalAmount != 36000.0 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if len(quote.Drafts) != 3 || !quote.Drafts[0].IsPrimaryUser {
		t.Fatalf("drafts not synced: %+v", quote.Drafts)
	}
}

func TestQuoteTrekMissing(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock, nil)
	if _, err := svc.Quote(context.Background(), 9, 1, nil); !errors.Is(err, ErrTrekNotFound) {
		t.Fatalf("expected ErrTrekNotFound, got %v", err)
	}
}

func TestPrimaryDraft(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM profiles WHERE id=`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"full_name", "email", "phone_number", "address"}).
			AddRow("User One", "user@example.com", "9999999999", "12 Hill Road"))

	svc := NewService(mock, nil)
	draft, err := svc.PrimaryDraft(context.Background(), "user-1", "fallback@example.com")
	if err != nil {
		t.Fatalf("primary draft: %v", err)
	}
	if draft.Name != "User One" || draft.Email != "user@example.com" || !draft.IsPrimaryUser {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestPrimaryDraftNoProfile(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM profiles WHERE id=`).
		WithArgs("user-2").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock, nil)
	draft, err := svc.PrimaryDraft(context.Background(), "user-2", "fallback@example.com")
	if err != nil {
		t.Fatalf("primary draft: %v", err)
	}
	if draft.Email != "fallback@example.com" || !draft.IsPrimaryUser {
		t.Fatalf("expected fallback draft, got %+v", draft)
	}
}

func TestListForUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	created := time.Now()

	mock.ExpectQuery(`FROM bookings b`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "trek_id", "trek_date", "total_participants", "total_amount", "status", "created_at",
			"title", "duration", "difficulty",
		}).
			AddRow(int64(2), "user-1", int64(5), date, 2, 24000.0, StatusPending, created,
				"Valley Trek", "5 days", "moderate").
			AddRow(int64(1), "user-1", int64(6), date, 1, 9000.0, StatusConfirmed, created.Add(-time.Hour),
				"Summit Trek", "7 days", "hard"))

	mock.ExpectQuery(`FROM participants WHERE booking_id`).
		WithArgs([]int64{2, 1}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "booking_id", "name", "email", "phone_number", "address", "is_primary_user"}).
			AddRow(int64(10), int64(2), "Primary User", "primary@example.com", "9999999999", "12 Hill Road", true).
			AddRow(int64(11), int64(2), "Guest", "guest@example.com", "8888888888", "34 Lake Road", false).
			AddRow(int64(12), int64(1), "Primary User", "primary@example.com", "9999999999", "12 Hill Road", true))

	svc := NewService(mock, nil)
	bookings, err := svc.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	if bookings[0].Trek.Title != "Valley Trek" || len(bookings[0].Participants) != 2 {
		t.Fatalf("unexpected first booking: %+v", bookings[0])
	}
	if len(bookings[1].Participants) != 1 || !bookings[1].Participants[0].IsPrimaryUser {
		t.Fatalf("unexpected second booking participants")
	}
}

func TestListForUserQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM bookings b`).WithArgs("user-x").WillReturnError(errQuery)

	svc := NewService(mock, nil)
	if _, err := svc.ListForUser(context.Background(), "user-x"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hub := notify.NewHub(nil)
	client := hub.Register("user-1")
	defer hub.Unregister(client)

	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE bookings SET status`).
		WithArgs(int64(77), StatusConfirmed, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "trek_id", "trek_date", "total_participants", "total_amount", "status", "created_at",
		}).AddRow(int64(77), "user-1", int64(5), date, 2, 24000.0, StatusConfirmed, time.Now()))

	svc := NewService(mock, hub)
	b, err := svc.UpdateStatus(context.Background(), 77, "user-1", StatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Fatalf("unexpected status: %s", b.Status)
	}

	select {
	case payload := <-client.Send:
		var event StatusEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Status != StatusConfirmed {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for status event")
	}
}

func TestUpdateStatusUnknown(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.UpdateStatus(context.Background(), 1, "user-1", "teleported"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown status")
	}
}

func TestUpdateStatusForeignBooking(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	// someone else's booking id matches no row for this user
	mock.ExpectQuery(`UPDATE bookings SET status`).
		WithArgs(int64(77), StatusCancelled, "intruder").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock, nil)
	if _, err := svc.UpdateStatus(context.Background(), 77, "intruder", StatusCancelled); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found for a foreign booking, got %v", err)
	}
}

func TestUpdateStatusQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`UPDATE bookings SET status`).
		WithArgs(int64(77), StatusCancelled, "user-1").
		WillReturnError(errQuery)

	svc := NewService(mock, nil)
	_, err = svc.UpdateStatus(context.Background(), 77, "user-1", StatusCancelled)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the raw query error, got %v", err)
	}
}
