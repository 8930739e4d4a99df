package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/httpmodel"
	"github.com/mentorhub/bookings/internal/ledger"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/utils"
	"github.com/sirupsen/logrus"
)

// SignatureHeader is the header the scheduling provider uses to deliver the
// HMAC signature of the raw request body.
const SignatureHeader = "X-Cal-Signature-256"

// HandleWebhook receives signed booking events from the scheduling provider.
// The signature is verified against the raw body before anything is parsed.
// Outcomes the gateway has fully handled, including quota denials, are
// acknowledged with a 200 so the provider stops redelivering them; transient
// failures return a 500 so that at-least-once delivery retries the event.
func (s Server) HandleWebhook(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "scheduling webhook"})

	context := ctx.Request().Context()

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	signature := ctx.Request().Header.Get(SignatureHeader)
	if !utils.ValidSignature(s.WebhookSecret, body, signature) {
		log.Warn("rejected a webhook delivery with an invalid signature")
		return model.Error(ctx, "invalid webhook signature", http.StatusUnauthorized)
	}

	var event httpmodel.WebhookEvent
	if err = json.Unmarshal(body, &event); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{
		"triggerEvent": event.TriggerEvent,
		"externalID":   event.Payload.UID,
	})

	err = s.Gateway.ProcessEvent(context, &event)
	if ledger.IsDenied(err) {
		// User-facing denials aren't transient; acknowledge so the provider
		// doesn't redeliver forever.
		log.Warnf("webhook event denied by the quota ledger: %s", err.Error())
		return model.Success(ctx, map[string]string{"message": err.Error()}, http.StatusOK)
	}
	if err != nil {
		log.Error(err)
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("processed the webhook event")

	return model.Success(ctx, map[string]string{"message": "ok"}, http.StatusOK)
}
