package model

import "time"

// User represents an application user known to the booking service. The ID is
// assigned by the identity provider and supplied by the caller; the service
// never mints user identifiers of its own.
//
// swagger:model
type User struct {
	// The user identifier
	//
	// readOnly: true
	ID string `gorm:"primaryKey" json:"id"`

	// Whether the user currently has an active mentorship plan. Only active
	// users consume and replenish session quota.
	MentorshipActive bool `gorm:"not null;default:false" json:"mentorship_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name to use in the database.
func (u *User) TableName() string {
	return "users"
}
