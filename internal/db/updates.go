package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RecordQuotaUpdate writes one audit row for a quota adjustment. Callers invoke
// this in the same transaction as the counter change itself.
func RecordQuotaUpdate(ctx context.Context, db *gorm.DB, userID, operation string, delta int, bookingID *string, effectiveDate time.Time) error {
	wrapMsg := "unable to record the quota update"

	update := model.QuotaUpdate{
		ID:            uuid.NewString(),
		UserID:        userID,
		Operation:     operation,
		Delta:         delta,
		BookingID:     bookingID,
		EffectiveDate: effectiveDate,
	}
	err := db.WithContext(ctx).Create(&update).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// ListQuotaUpdates lists the quota adjustments recorded for a user, most recent
// first.
func ListQuotaUpdates(ctx context.Context, db *gorm.DB, userID string) ([]model.QuotaUpdate, error) {
	wrapMsg := "unable to list the quota updates"

	var updates []model.QuotaUpdate
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&updates).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return updates, nil
}
