package db

import (
	"context"
	"time"

	"github.com/mentorhub/bookings/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUserQuota looks up the quota row for the user. Returns nil without an
// error if no quota has been provisioned for the user.
func GetUserQuota(ctx context.Context, db *gorm.DB, userID string) (*model.UserQuota, error) {
	wrapMsg := "unable to look up the user quota"

	var quota model.UserQuota
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&quota).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &quota, nil
}

// UpsertUserQuota either inserts a new quota row or updates an existing one.
func UpsertUserQuota(ctx context.Context, db *gorm.DB, quota *model.UserQuota) error {
	wrapMsg := "unable to add or update the user quota"

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cap", "remaining", "reset_at", "updated_at"}),
		}).
		Create(quota).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// DecrementRemaining atomically claims one unit of the user's weekly quota. The
// decrement is conditional on remaining being positive so that a stored counter
// can never go below zero under concurrent callers. Returns true if a unit was
// claimed.
func DecrementRemaining(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&model.UserQuota{}).
		Where("user_id = ? AND remaining > 0", userID).
		UpdateColumn("remaining", gorm.Expr("remaining - 1"))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "unable to decrement the remaining session count")
	}

	return res.RowsAffected > 0, nil
}

// IncrementRemaining atomically returns one unit of the user's weekly quota.
// The increment is conditional on remaining being below the cap, silently
// absorbing over-restoration. Returns true if the counter changed.
func IncrementRemaining(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&model.UserQuota{}).
		Where("user_id = ? AND remaining < cap", userID).
		UpdateColumn("remaining", gorm.Expr("remaining + 1"))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "unable to increment the remaining session count")
	}

	return res.RowsAffected > 0, nil
}

// ResetQuota refills the user's weekly quota to its cap and advances the reset
// timestamp.
func ResetQuota(ctx context.Context, db *gorm.DB, userID string, resetAt time.Time) error {
	wrapMsg := "unable to reset the user quota"

	err := db.WithContext(ctx).
		Model(&model.UserQuota{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"remaining": gorm.Expr("cap"),
			"reset_at":  resetAt,
		}).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// ListResetDueQuotas lists the quota rows of mentorship-active users whose
// reset timestamp has elapsed.
func ListResetDueQuotas(ctx context.Context, db *gorm.DB, now time.Time) ([]model.UserQuota, error) {
	wrapMsg := "unable to list the quotas that are due for a reset"

	var quotas []model.UserQuota
	err := db.WithContext(ctx).
		Table("user_quotas").
		Select("user_quotas.*").
		Joins("JOIN users ON user_quotas.user_id = users.id").
		Where("users.mentorship_active").
		Where("user_quotas.reset_at <= ?", now).
		Find(&quotas).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return quotas, nil
}
