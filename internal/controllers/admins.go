package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/sirupsen/logrus"
)

// TriggerResets runs the weekly quota reset sweep immediately. The sweep is
// idempotent, so running it by hand alongside the scheduler is safe.
func (s Server) TriggerResets(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "manual reset sweep"})

	result, err := s.ResetScheduler.RunNow(ctx.Request().Context())
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, result, http.StatusOK)
}

// GetAllUsers lists the users that are currently defined in the database.
func (s Server) GetAllUsers(ctx echo.Context) error {
	var data []model.User
	err := s.GORMDB.WithContext(ctx.Request().Context()).Find(&data).Error
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	return model.Success(ctx, data, http.StatusOK)
}
