package model

import "time"

// Quota update operation names.
const (
	OpConsume = "CONSUME"
	OpRestore = "RESTORE"
	OpReset   = "RESET"
	OpSetCap  = "SET_CAP"
)

// QuotaUpdate records a single adjustment to a user's session quota. Every
// consume, restore, and reset writes one row in the same transaction as the
// counter change, giving the cached counter an audit trail.
//
// swagger:model
type QuotaUpdate struct {
	// The update identifier
	//
	// readOnly: true
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// The user whose quota was adjusted
	UserID string `gorm:"not null;index" json:"user_id"`

	// The operation performed: CONSUME, RESTORE, RESET, or SET_CAP
	Operation string `gorm:"type:varchar(20);not null" json:"operation"`

	// The change applied to the remaining counter
	Delta int `gorm:"not null" json:"delta"`

	// The booking that triggered the adjustment, if any
	BookingID *string `gorm:"type:uuid" json:"booking_id,omitempty"`

	EffectiveDate time.Time `gorm:"not null" json:"effective_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name to use in the database.
func (u *QuotaUpdate) TableName() string {
	return "quota_updates"
}
