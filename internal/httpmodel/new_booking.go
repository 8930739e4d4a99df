package httpmodel

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Define a single validator to do all of the validations for us.
var v = validator.New()

// NewBooking is the request body for booking a mentorship session through the
// direct mutation API.
//
// swagger:model
type NewBooking struct {

	// The user the session is booked for
	//
	// required: true
	UserID string `json:"user_id" validate:"required"`

	// The session start time in UTC
	//
	// required: true
	Start time.Time `json:"start" validate:"required"`

	// The session end time in UTC
	//
	// required: true
	End time.Time `json:"end" validate:"required,gtfield=Start"`

	// The booking identifier assigned by the scheduling provider, when the
	// booking was already made through the provider's UI. When omitted, the
	// service creates the booking at the provider itself.
	ExternalID string `json:"external_id"`

	// The provider event type to book when no external ID is given
	EventTypeID int `json:"event_type_id"`
}

// Validate verifies that all the required fields in a new booking are present
// and consistent.
func (b NewBooking) Validate() error {
	return v.Struct(b)
}

// NewUser is the request body for registering or updating a user.
//
// swagger:model
type NewUser struct {

	// Whether the user has an active mentorship plan
	//
	// required: true
	MentorshipActive bool `json:"mentorship_active"`
}

// QuotaCap is the request body for setting a user's weekly session cap.
//
// swagger:model
type QuotaCap struct {

	// The maximum number of sessions per week
	//
	// required: true
	Cap int `json:"cap" validate:"required,min=1"`
}

// Validate verifies that the cap is present and sensible.
func (q QuotaCap) Validate() error {
	return v.Struct(q)
}
