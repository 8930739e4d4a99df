package db

import (
	"context"
	"time"

	"github.com/mentorhub/bookings/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertBookingIfAbsent inserts the booking unless a row with the same external
// identifier already exists. The insert-or-ignore is guarded by the unique
// constraint on external_id, so whichever of the two ingestion paths gets here
// first creates the row and the other is a no-op. Returns true if this caller
// created the row.
func InsertBookingIfAbsent(ctx context.Context, db *gorm.DB, booking *model.Booking) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(booking)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "unable to insert the booking")
	}

	return res.RowsAffected > 0, nil
}

// GetBooking looks up a booking by its internal identifier. Returns nil without
// an error if the booking doesn't exist.
func GetBooking(ctx context.Context, db *gorm.DB, bookingID string) (*model.Booking, error) {
	wrapMsg := "unable to look up the booking"

	var booking model.Booking
	err := db.WithContext(ctx).Where("id = ?", bookingID).First(&booking).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &booking, nil
}

// GetBookingByExternalID looks up a booking by the identifier assigned by the
// scheduling provider. Returns nil without an error if the booking doesn't
// exist.
func GetBookingByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*model.Booking, error) {
	wrapMsg := "unable to look up the booking by its external identifier"

	var booking model.Booking
	err := db.WithContext(ctx).Where("external_id = ?", externalID).First(&booking).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &booking, nil
}

// ListUserBookings lists all bookings owned by the user, most recent session
// first.
func ListUserBookings(ctx context.Context, db *gorm.DB, userID string) ([]model.Booking, error) {
	wrapMsg := "unable to list the user's bookings"

	var bookings []model.Booking
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at desc").
		Find(&bookings).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return bookings, nil
}

// TransitionFromScheduled flips the booking into the given status only if its
// persisted status is still SCHEDULED and its start time still matches
// scheduledAt. The comparisons and the update are a single atomic statement,
// which is what guarantees that exactly one of two racing callers performs the
// transition and that the caller's view of the start time is the one the
// transition applied to. Returns true if this caller performed it.
func TransitionFromScheduled(ctx context.Context, db *gorm.DB, bookingID string, scheduledAt time.Time, to model.BookingStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ? AND scheduled_at = ?", bookingID, model.BookingScheduled, scheduledAt).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "unable to transition the booking status")
	}

	return res.RowsAffected > 0, nil
}

// UpdateScheduledAt moves the booking from one start time to another only if
// its persisted status is still SCHEDULED and its start time still matches
// from. Returns true if the row was updated.
func UpdateScheduledAt(ctx context.Context, db *gorm.DB, bookingID string, from, to time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ? AND scheduled_at = ?", bookingID, model.BookingScheduled, from).
		UpdateColumn("scheduled_at", to)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "unable to update the booking start time")
	}

	return res.RowsAffected > 0, nil
}

// CountFutureScheduled counts the user's SCHEDULED bookings that start within
// [weekStart, weekEnd) and have not already begun. This live count is the
// authoritative admission check; the cached remaining counter only tracks the
// current week. The booking currently being admitted is excluded so that it
// never counts against itself.
func CountFutureScheduled(ctx context.Context, db *gorm.DB, userID string, weekStart, weekEnd, now time.Time, excludeBookingID string) (int64, error) {
	wrapMsg := "unable to count the user's scheduled bookings"

	q := db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("user_id = ? AND status = ?", userID, model.BookingScheduled).
		Where("scheduled_at >= ? AND scheduled_at < ?", weekStart, weekEnd).
		Where("scheduled_at >= ?", now)
	if excludeBookingID != "" {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var count int64
	err := q.Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return count, nil
}
