// Command backfill-quotas provisions quota rows for mentorship-active users
// that don't have one yet. Useful after enabling mentorship for a batch of
// users outside the API.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/mentorhub/bookings/internal/calendar"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DatabaseURI string
	DefaultCap  int
}

// loadConfig loads configuration settings from the environment. We're using koanf directly here so that the
// configuration files don't have to be present to run this utility.
func loadConfig() (*Config, error) {
	k := koanf.New(".")

	// Load the configuration settings from the environment.
	err := k.Load(
		env.Provider("BOOKINGS_", ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BOOKINGS_")), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Verify that the database URI is specified.
	databaseURI := k.String("database.uri")
	if databaseURI == "" {
		return nil, fmt.Errorf("BOOKINGS_DATABASE_URI must be defined")
	}

	defaultCap := k.Int("quota.default.cap")
	if defaultCap == 0 {
		defaultCap = 1
	}

	return &Config{DatabaseURI: databaseURI, DefaultCap: defaultCap}, nil
}

// listUsersWithoutQuotas lists the mentorship-active users that have no quota row.
func listUsersWithoutQuotas(ctx context.Context, tx *gorm.DB) ([]model.User, error) {
	var users []model.User
	err := tx.WithContext(ctx).
		Where("mentorship_active").
		Where("id NOT IN (?)", tx.Model(&model.UserQuota{}).Select("user_id")).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to list users without quotas")
	}
	return users, nil
}

func main() {
	ctx := context.Background()

	// Load the configuration.
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("unable to load the configuration: %s", err.Error())
	}

	// Establish the database connection.
	gormdb, err := gorm.Open(postgres.Open(cfg.DatabaseURI), &gorm.Config{})
	if err != nil {
		log.Fatalf("unable to connect to the database: %s", err.Error())
	}

	now := time.Now()

	err = gormdb.Transaction(func(tx *gorm.DB) error {
		users, err := listUsersWithoutQuotas(ctx, tx)
		if err != nil {
			return err
		}

		for _, user := range users {
			quota := model.UserQuota{
				UserID:    user.ID,
				Cap:       cfg.DefaultCap,
				Remaining: cfg.DefaultCap,
				ResetAt:   calendar.NextResetAt(now),
			}
			if err := tx.WithContext(ctx).Create(&quota).Error; err != nil {
				return errors.Wrapf(err, "unable to provision a quota for %s", user.ID)
			}
			log.Printf("provisioned a quota for %s with a cap of %d", user.ID, cfg.DefaultCap)
		}

		log.Printf("provisioned quotas for %d users", len(users))
		return nil
	})
	if err != nil {
		log.Fatal(err.Error())
	}
}
