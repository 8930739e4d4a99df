package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/httpmodel"
	"github.com/mentorhub/bookings/internal/ledger"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddUser registers a user or updates the mentorship flag on an existing one.
// Activating mentorship provisions a quota with the default weekly cap if the
// user doesn't have one yet.
func (s Server) AddUser(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "adding a user"})

	context := ctx.Request().Context()

	userID := ctx.Param("user-id")
	if userID == "" {
		return model.Error(ctx, "invalid user id", http.StatusBadRequest)
	}

	var request httpmodel.NewUser
	if err := ctx.Bind(&request); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{"user": userID, "mentorshipActive": request.MentorshipActive})

	user := &model.User{ID: userID, MentorshipActive: request.MentorshipActive}
	err := s.GORMDB.Transaction(func(tx *gorm.DB) error {
		if err := db.UpsertUser(context, tx, user); err != nil {
			return err
		}
		if user.MentorshipActive {
			if _, err := ledger.GetOrProvisionQuota(context, tx, userID, s.DefaultSessionCap, s.Gateway.Now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("added or updated the user")

	return model.Success(ctx, user, http.StatusOK)
}

// GetUserQuota returns the user's weekly session quota.
func (s Server) GetUserQuota(ctx echo.Context) error {
	context := ctx.Request().Context()

	userID := ctx.Param("user-id")
	if err := s.ValidateUser(ctx, userID); err != nil {
		return nil
	}

	quota, err := db.GetUserQuota(context, s.GORMDB, userID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if quota == nil {
		return model.Error(ctx, "no quota provisioned for the user", http.StatusNotFound)
	}

	return model.Success(ctx, quota, http.StatusOK)
}

// AddQuota sets the user's weekly session cap, clamping the remaining counter
// to the new cap.
func (s Server) AddQuota(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "setting a session cap"})

	context := ctx.Request().Context()

	userID := ctx.Param("user-id")
	if err := s.ValidateUser(ctx, userID); err != nil {
		return nil
	}

	var request httpmodel.QuotaCap
	if err := ctx.Bind(&request); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err := request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{"user": userID, "cap": request.Cap})

	var quota *model.UserQuota
	err := s.GORMDB.Transaction(func(tx *gorm.DB) error {
		var err error
		quota, err = ledger.GetOrProvisionQuota(context, tx, userID, request.Cap, s.Gateway.Now())
		if err != nil {
			return err
		}

		oldRemaining := quota.Remaining
		quota.Cap = request.Cap
		if quota.Remaining > quota.Cap {
			quota.Remaining = quota.Cap
		}
		if err = db.UpsertUserQuota(context, tx, quota); err != nil {
			return err
		}

		return db.RecordQuotaUpdate(context, tx, userID, model.OpSetCap, quota.Remaining-oldRemaining, nil, s.Gateway.Now())
	})
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("updated the user's session cap")

	return model.Success(ctx, quota, http.StatusOK)
}

// GetQuotaUpdates lists the audit trail of quota adjustments for a user.
func (s Server) GetQuotaUpdates(ctx echo.Context) error {
	context := ctx.Request().Context()

	userID := ctx.Param("user-id")
	if err := s.ValidateUser(ctx, userID); err != nil {
		return nil
	}

	updates, err := db.ListQuotaUpdates(context, s.GORMDB, userID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, updates, http.StatusOK)
}
