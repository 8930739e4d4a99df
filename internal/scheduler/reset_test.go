package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/mentorhub/bookings/internal/calendar"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// A Wednesday; the surrounding week runs March 10 through March 17.
var testNow = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	gormdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	conn, err := gormdb.DB()
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, gormdb.AutoMigrate(&model.User{}, &model.UserQuota{}, &model.QuotaUpdate{}))
	return gormdb
}

func seedUser(t *testing.T, gormdb *gorm.DB, userID string, active bool, remaining int, resetAt time.Time) {
	require.NoError(t, gormdb.Create(&model.User{ID: userID, MentorshipActive: active}).Error)
	require.NoError(t, gormdb.Create(&model.UserQuota{
		UserID:    userID,
		Cap:       1,
		Remaining: remaining,
		ResetAt:   resetAt,
	}).Error)
}

func TestRunResets_ResetsDueQuotasOnly(t *testing.T) {
	gormdb := newTestDB(t)
	ctx := context.Background()

	elapsed := testNow.Add(-time.Hour)
	upcoming := calendar.NextResetAt(testNow)

	seedUser(t, gormdb, "due-user", true, 0, elapsed)
	seedUser(t, gormdb, "not-due-user", true, 0, upcoming)
	seedUser(t, gormdb, "inactive-user", false, 0, elapsed)

	result, err := scheduler.RunResets(ctx, gormdb, testNow)
	require.NoError(t, err)
	assert.Equal(t, scheduler.SweepResult{Total: 1, Succeeded: 1}, result)

	quota, err := db.GetUserQuota(ctx, gormdb, "due-user")
	require.NoError(t, err)
	assert.Equal(t, 1, quota.Remaining)
	assert.True(t, quota.ResetAt.Equal(upcoming), "the reset must advance to the next week boundary")

	for _, userID := range []string{"not-due-user", "inactive-user"} {
		quota, err := db.GetUserQuota(ctx, gormdb, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, quota.Remaining, "%s must not be reset", userID)
	}
}

func TestRunResets_SecondSweepFindsNothing(t *testing.T) {
	gormdb := newTestDB(t)
	ctx := context.Background()

	seedUser(t, gormdb, "due-user", true, 0, testNow.Add(-time.Hour))

	first, err := scheduler.RunResets(ctx, gormdb, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Succeeded)

	second, err := scheduler.RunResets(ctx, gormdb, testNow)
	require.NoError(t, err)
	assert.Equal(t, scheduler.SweepResult{Total: 0, Succeeded: 0}, second)
}

func TestRunResets_EmptyDatabase(t *testing.T) {
	gormdb := newTestDB(t)

	result, err := scheduler.RunResets(context.Background(), gormdb, testNow)
	require.NoError(t, err)
	assert.Equal(t, scheduler.SweepResult{}, result)
}

func TestResetScheduler_RunNow(t *testing.T) {
	gormdb := newTestDB(t)
	ctx := context.Background()

	seedUser(t, gormdb, "due-user", true, 0, testNow.Add(-time.Hour))

	rs := scheduler.NewResetScheduler(gormdb, time.Hour).
		WithClock(func() time.Time { return testNow })

	result, err := rs.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, scheduler.SweepResult{Total: 1, Succeeded: 1}, result)

	quota, err := db.GetUserQuota(ctx, gormdb, "due-user")
	require.NoError(t, err)
	assert.Equal(t, 1, quota.Remaining)
}

func TestResetScheduler_StartRunsImmediateSweep(t *testing.T) {
	gormdb := newTestDB(t)
	ctx := context.Background()

	seedUser(t, gormdb, "due-user", true, 0, testNow.Add(-time.Hour))

	rs := scheduler.NewResetScheduler(gormdb, time.Hour).
		WithClock(func() time.Time { return testNow })
	rs.Start()
	defer rs.Stop()

	require.Eventually(t, func() bool {
		quota, err := db.GetUserQuota(ctx, gormdb, "due-user")
		return err == nil && quota != nil && quota.Remaining == 1
	}, 2*time.Second, 10*time.Millisecond, "the initial sweep must run without waiting for a tick")
}
