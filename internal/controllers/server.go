package controllers

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/reconcile"
	"github.com/mentorhub/bookings/internal/scheduler"
	"github.com/mentorhub/bookings/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "controllers"})

// Server groups the dependencies shared by all request handlers.
type Server struct {
	Router            *echo.Echo
	DB                *sql.DB
	GORMDB            *gorm.DB
	Gateway           *reconcile.Gateway
	ResetScheduler    *scheduler.ResetScheduler
	Service           string
	Version           string
	WebhookSecret     string
	DefaultSessionCap int
}
