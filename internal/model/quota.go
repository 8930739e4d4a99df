package model

import "time"

// UserQuota tracks the number of mentorship sessions a user may still book in
// the current week. Remaining is a cached counter for the week ending at
// ResetAt only; admission checks for other weeks recount live bookings instead
// of trusting it.
//
// swagger:model
type UserQuota struct {
	// The owning user
	UserID string `gorm:"primaryKey" json:"user_id"`

	// The maximum number of sessions per week
	Cap int `gorm:"not null;default:1" json:"cap"`

	// Sessions left in the current week; always within [0, cap]
	Remaining int `gorm:"not null;default:0" json:"remaining"`

	// When the counter is next due to be reset; always a future Monday 00:00 UTC
	ResetAt time.Time `gorm:"not null" json:"reset_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name to use in the database.
func (q *UserQuota) TableName() string {
	return "user_quotas"
}
