package model

import "time"

// BookingStatus is the lifecycle state of a mentorship session booking.
type BookingStatus string

const (
	BookingScheduled       BookingStatus = "SCHEDULED"
	BookingCompleted       BookingStatus = "COMPLETED"
	BookingCancelled       BookingStatus = "CANCELLED"
	BookingMentorCancelled BookingStatus = "MENTOR_CANCELLED"
)

// Terminal returns true if no further transition is permitted out of the
// status. Terminal statuses are sticky: duplicate webhook deliveries routinely
// attempt to re-apply them and are treated as no-ops.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingMentorCancelled:
		return true
	default:
		return false
	}
}

// Booking is the durable record of a mentorship session. Bookings are never
// hard-deleted; cancellations and completions are status transitions so that
// the full history remains queryable.
//
// swagger:model
type Booking struct {
	// The internal booking identifier
	//
	// readOnly: true
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// The owning user
	UserID string `gorm:"not null;index" json:"user_id"`

	// The identifier assigned by the scheduling provider; unique, correlates
	// webhook events with bookings regardless of which path created the row
	ExternalID string `gorm:"not null;uniqueIndex" json:"external_id"`

	// The session's wall-clock start time in UTC
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`

	Status BookingStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"status"`

	// Presentation links; not used in reconciliation logic
	MeetingURL string `json:"meeting_url,omitempty"`
	BookingURL string `json:"booking_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name to use in the database.
func (b *Booking) TableName() string {
	return "bookings"
}
