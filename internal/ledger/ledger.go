// Package ledger implements the per-user weekly session quota. The cached
// remaining counter tracks the current week only; admission for any week is
// recomputed from live bookings rather than trusted from the counter alone. All
// operations expect to run inside the caller's transaction, and all counter
// changes are single conditional statements so that concurrent callers on the
// same user can never drive remaining outside [0, cap].
package ledger

import (
	"context"
	"time"

	"github.com/mentorhub/bookings/internal/calendar"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "ledger"})

// Denial reasons surfaced to callers.
const (
	ReasonNoActiveMentorship = "no active mentorship"
	ReasonQuotaExhausted     = "no sessions remaining for the requested week"
)

// DeniedError indicates that a booking was refused by the quota ledger. It is a
// user-facing outcome, not a bug.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// IsDenied determines whether or not an error is a quota denial.
func IsDenied(err error) bool {
	var denied *DeniedError
	return errors.As(err, &denied)
}

// GetOrProvisionQuota returns the user's quota row, creating one with the
// default cap if the user has none yet.
func GetOrProvisionQuota(ctx context.Context, tx *gorm.DB, userID string, defaultCap int, now time.Time) (*model.UserQuota, error) {
	quota, err := db.GetUserQuota(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if quota != nil {
		return quota, nil
	}

	quota = &model.UserQuota{
		UserID:    userID,
		Cap:       defaultCap,
		Remaining: defaultCap,
		ResetAt:   calendar.NextResetAt(now),
	}
	if err = db.UpsertUserQuota(ctx, tx, quota); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user": userID, "cap": defaultCap}).Info("provisioned a quota for the user")

	return quota, nil
}

// TryConsume checks whether the user may book a session starting at targetDate
// and, if the date falls in the current week, claims one unit of the cached
// counter. Admission for any week is based on counting the user's live
// scheduled bookings inside that week; bookingID identifies the booking being
// admitted so that it's excluded from its own count. Returns the number of
// sessions remaining in the target week after the claim.
func TryConsume(ctx context.Context, tx *gorm.DB, userID, bookingID string, targetDate, now time.Time, defaultCap int) (int, error) {
	user, err := db.GetUser(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil || !user.MentorshipActive {
		return 0, &DeniedError{Reason: ReasonNoActiveMentorship}
	}

	quota, err := GetOrProvisionQuota(ctx, tx, userID, defaultCap, now)
	if err != nil {
		return 0, err
	}

	weekStart, weekEnd := calendar.WeekBoundaries(targetDate)
	live, err := db.CountFutureScheduled(ctx, tx, userID, weekStart, weekEnd, now, bookingID)
	if err != nil {
		return 0, err
	}
	if live >= int64(quota.Cap) {
		return 0, &DeniedError{Reason: ReasonQuotaExhausted}
	}

	// Only the current week is gated by the cached counter; future weeks are
	// admitted on the live count alone.
	if !calendar.IsInCurrentWeek(targetDate, now) {
		return quota.Cap - int(live) - 1, nil
	}

	claimed, err := db.DecrementRemaining(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, &DeniedError{Reason: ReasonQuotaExhausted}
	}

	if err = db.RecordQuotaUpdate(ctx, tx, userID, model.OpConsume, -1, &bookingID, targetDate); err != nil {
		return 0, err
	}

	quota, err = db.GetUserQuota(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	log.WithFields(logrus.Fields{"user": userID, "remaining": quota.Remaining}).Debug("claimed one session from the weekly quota")

	return quota.Remaining, nil
}

// Restore returns one unit of quota after a cancellation, but only if the
// cancelled session fell in the current week. The cached counter doesn't track
// past or future weeks, so restoring for those is a no-op. The increment is
// clamped at the cap.
func Restore(ctx context.Context, tx *gorm.DB, userID, bookingID string, bookingScheduledAt, now time.Time) error {
	if !calendar.IsInCurrentWeek(bookingScheduledAt, now) {
		log.WithFields(logrus.Fields{"user": userID, "booking": bookingID}).
			Debug("cancelled session is outside the current week, nothing to restore")
		return nil
	}

	restored, err := db.IncrementRemaining(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !restored {
		// Already at the cap; absorb rather than error.
		log.WithFields(logrus.Fields{"user": userID, "booking": bookingID}).
			Debug("remaining session count already at the cap")
		return nil
	}

	return db.RecordQuotaUpdate(ctx, tx, userID, model.OpRestore, 1, &bookingID, bookingScheduledAt)
}

// Reset refills the user's quota to its cap and schedules the next reset.
// Calling it twice within the same week is a harmless overwrite with the same
// values.
func Reset(ctx context.Context, tx *gorm.DB, userID string, now time.Time) error {
	quota, err := db.GetUserQuota(ctx, tx, userID)
	if err != nil {
		return err
	}
	if quota == nil {
		log.WithFields(logrus.Fields{"user": userID}).Warn("no quota to reset for the user")
		return nil
	}

	if err = db.ResetQuota(ctx, tx, userID, calendar.NextResetAt(now)); err != nil {
		return err
	}

	return db.RecordQuotaUpdate(ctx, tx, userID, model.OpReset, quota.Cap-quota.Remaining, nil, now)
}
