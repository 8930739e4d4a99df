package httpmodel

import "time"

// Webhook trigger event names sent by the scheduling provider.
const (
	TriggerBookingCreated     = "BOOKING_CREATED"
	TriggerBookingRescheduled = "BOOKING_RESCHEDULED"
	TriggerBookingCancelled   = "BOOKING_CANCELLED"
	TriggerPing               = "PING"
)

// WebhookMetadata carries the application fields attached to a booking when it
// was created. The user ID is set by the booking UI so that webhook events can
// be correlated with an application user.
type WebhookMetadata struct {
	UserID string `json:"userId"`
}

// WebhookPayload is the booking snapshot included in a webhook event. Delivery
// is at-least-once and unordered; nothing in the payload may be assumed to be
// fresher than the local row.
type WebhookPayload struct {
	UID                string          `json:"uid"`
	Title              string          `json:"title"`
	StartTime          time.Time       `json:"startTime"`
	EndTime            time.Time       `json:"endTime"`
	Status             string          `json:"status"`
	CancellationReason string          `json:"cancellationReason"`
	CancelledBy        string          `json:"cancelledBy"`
	MeetingURL         string          `json:"meetingUrl"`
	BookingURL         string          `json:"bookingUrl"`
	Metadata           WebhookMetadata `json:"metadata"`
}

// WebhookEvent is the envelope the scheduling provider delivers to the webhook
// endpoint. The raw body is authenticated with an HMAC signature before this
// structure is ever decoded.
type WebhookEvent struct {
	TriggerEvent string         `json:"triggerEvent"`
	CreatedAt    time.Time      `json:"createdAt"`
	Payload      WebhookPayload `json:"payload"`
}
