package profile

import "time"

// Profile is the user's editable contact record, distinct from the account
// row in users. It doubles as the default-fill source for the primary
// participant on new bookings.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	AvatarURL   string    `json:"avatar_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}
