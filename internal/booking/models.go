package booking

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID                int64         `json:"id"`
	UserID            string        `json:"user_id"`
	TrekID            int64         `json:"trek_id"`
	TrekDate          time.Time     `json:"trek_date"`
	TotalParticipants int           `json:"total_participants"`
	TotalAmount       float64       `json:"total_amount"`
	Status            string        `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	Trek              TrekInfo      `json:"trek"`
	Participants      []Participant `json:"participants,omitempty"`
}

// TrekInfo carries the trek columns joined into booking listings.
type TrekInfo struct {
	Title      string `json:"title"`
	Duration   string `json:"duration"`
	Difficulty string `json:"difficulty"`
}

type Participant struct {
	ID            int64  `json:"id"`
	BookingID     int64  `json:"booking_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	Address       string `json:"address"`
	IsPrimaryUser bool   `json:"is_primary_user"`
}

// Draft is a participant being filled in before the booking exists.
type Draft struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	Address       string `json:"address"`
	IsPrimaryUser bool   `json:"is_primary_user"`
}

type CreateInput struct {
	UserID   string    `json:"-"`
	TrekID   int64     `json:"trek_id"`
	TrekDate time.Time `json:"trek_date"`
	Drafts   []Draft   `json:"participants"`
}

// Quote is the priced form state returned before submission.
type Quote struct {
	TrekID           int64   `json:"trek_id"`
	PricePerPerson   float64 `json:"price_per_person"`
	ParticipantCount int     `json:"participant_count"`
	TotalAmount      float64 `json:"total_amount"`
	Drafts           []Draft `json:"participants"`
}

type StatusEvent struct {
	BookingID int64  `json:"booking_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
}
