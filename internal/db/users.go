package db

import (
	"context"

	"github.com/mentorhub/bookings/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser either inserts a new user record into the database or updates the
// mentorship flag on an existing one.
func UpsertUser(ctx context.Context, db *gorm.DB, user *model.User) error {
	wrapMsg := "unable to add or update the user"

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"mentorship_active", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetUser looks up the user details. Returns nil without an error if the user
// doesn't exist.
func GetUser(ctx context.Context, db *gorm.DB, userID string) (*model.User, error) {
	wrapMsg := "unable to look up the user"

	var user model.User
	err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &user, nil
}

// UserExists determines whether or not the user exists in the database.
func UserExists(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return false, errors.Wrap(err, "unable to determine whether the user exists")
	}
	return user != nil, nil
}
