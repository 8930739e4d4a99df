package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/calcom"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/ledger"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/internal/reconcile"
	"github.com/pkg/errors"
)

// httpStatusCode maps a gateway or ledger error to the response status for the
// direct mutation API.
func httpStatusCode(err error) int {
	switch {
	case ledger.IsDenied(err):
		return http.StatusConflict
	case errors.Is(err, reconcile.ErrUserNotFound), errors.Is(err, reconcile.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, reconcile.ErrNotOwner):
		return http.StatusForbidden
	case calcom.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ValidateUser determines whether or not a user exists in the database. If an
// error occurs during the lookup or the user doesn't exist then the appropriate
// response will be sent to the caller and an error will be returned.
func (s Server) ValidateUser(ctx echo.Context, userID string) error {
	exists, err := db.UserExists(ctx.Request().Context(), s.GORMDB, userID)
	if err != nil {
		sendErr := model.Error(ctx, err.Error(), http.StatusInternalServerError)
		if sendErr != nil {
			ctx.Logger().Errorf("unable to send response: %s", sendErr.Error())
		}
		return err
	}
	if !exists {
		msg := fmt.Sprintf("user %s does not exist", userID)
		sendErr := model.Error(ctx, msg, http.StatusNotFound)
		if sendErr != nil {
			ctx.Logger().Errorf("unable to send response: %s", sendErr.Error())
		}
		return errors.New(msg)
	}
	return nil
}
