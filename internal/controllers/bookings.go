package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/httpmodel"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/internal/query"
	"github.com/mentorhub/bookings/internal/reconcile"
	"github.com/sirupsen/logrus"
)

// AddBooking books a mentorship session for a user. The request either carries
// the identifier of a booking already made through the scheduling provider's UI
// or asks the service to create the booking at the provider itself.
func (s Server) AddBooking(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "booking a session"})

	context := ctx.Request().Context()

	var request httpmodel.NewBooking
	if err := ctx.Bind(&request); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err := request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{"user": request.UserID, "start": request.Start})

	booking, err := s.Gateway.BookSession(context, reconcile.BookSessionInput{
		UserID:      request.UserID,
		Start:       request.Start,
		End:         request.End,
		ExternalID:  request.ExternalID,
		EventTypeID: request.EventTypeID,
	})
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	log.Debug("booked the session")

	return model.Success(ctx, booking, http.StatusCreated)
}

// GetBooking returns the details of one booking.
func (s Server) GetBooking(ctx echo.Context) error {
	context := ctx.Request().Context()

	booking, err := db.GetBooking(context, s.GORMDB, ctx.Param("booking-id"))
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if booking == nil {
		return model.Error(ctx, "booking not found", http.StatusNotFound)
	}

	return model.Success(ctx, booking, http.StatusOK)
}

// CancelBooking cancels a booking on behalf of its owner. The user ID of the
// caller is passed as a query parameter by the UI layer, which has already
// authenticated it.
func (s Server) CancelBooking(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "cancelling a booking"})

	context := ctx.Request().Context()

	userID, err := query.ValidatedQueryParam(ctx, "user-id", "required")
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	reason := query.OptionalQueryParam(ctx, "reason", "")

	bookingID := ctx.Param("booking-id")
	log = log.WithFields(logrus.Fields{"user": userID, "booking": bookingID})

	booking, err := s.Gateway.CancelBooking(context, userID, bookingID, reason)
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	log.Debug("cancelled the booking")

	return model.Success(ctx, booking, http.StatusOK)
}

// CompleteBooking marks a session as held.
func (s Server) CompleteBooking(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "completing a booking", "booking": ctx.Param("booking-id")})

	context := ctx.Request().Context()

	booking, err := s.Gateway.CompleteBooking(context, ctx.Param("booking-id"))
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	return model.Success(ctx, booking, http.StatusOK)
}

// ListUserBookings lists all bookings owned by a user.
func (s Server) ListUserBookings(ctx echo.Context) error {
	context := ctx.Request().Context()

	userID := ctx.Param("user-id")
	if err := s.ValidateUser(ctx, userID); err != nil {
		return nil
	}

	bookings, err := db.ListUserBookings(context, s.GORMDB, userID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, bookings, http.StatusOK)
}
