// Package reconcile drives the booking lifecycle from its two independent
// ingestion paths: direct mutations invoked by the application and webhook
// events delivered by the scheduling provider. Both paths can observe the same
// logical transition, so every state-changing effect is derived from the
// booking's persisted status inside the transaction that updates it, never from
// bookkeeping about which events have been seen.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentorhub/bookings/internal/calcom"
	"github.com/mentorhub/bookings/internal/calendar"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/httpmodel"
	"github.com/mentorhub/bookings/internal/ledger"
	"github.com/mentorhub/bookings/internal/model"
	"github.com/mentorhub/bookings/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "reconcile"})

// Reason reported to the provider when a webhook-created booking exceeds the
// user's weekly quota.
const quotaExceededReason = "weekly session quota exceeded"

// Provider is the outbound interface to the scheduling provider.
type Provider interface {
	CreateBooking(ctx context.Context, req calcom.CreateBookingRequest) (*calcom.BookingInfo, error)
	CancelBooking(ctx context.Context, uid, reason string) error
	GetBooking(ctx context.Context, uid string) (*calcom.BookingInfo, error)
}

// Gateway owns all quota side effects. No other component mutates the
// remaining counter, which is what keeps the dedup guarantees in one place.
type Gateway struct {
	db         *gorm.DB
	provider   Provider
	defaultCap int

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a new reconciliation gateway.
func New(gormdb *gorm.DB, provider Provider, defaultCap int) *Gateway {
	return &Gateway{
		db:         gormdb,
		provider:   provider,
		defaultCap: defaultCap,
		now:        time.Now,
	}
}

// Now returns the gateway's current clock reading. Handlers that provision
// quota rows use it so that everything shares one clock.
func (g *Gateway) Now() time.Time {
	return g.now()
}

// WithClock replaces the gateway's clock, for tests.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// BookSessionInput carries the fields of a direct booking request.
type BookSessionInput struct {
	UserID      string
	Start       time.Time
	End         time.Time
	ExternalID  string
	EventTypeID int
}

// BookSession handles the direct mutation path for creating a booking. When the
// caller doesn't supply an external booking identifier the session is first
// booked at the provider. The local insert and the quota claim commit together:
// a denied claim rolls the insert back, leaving no trace. If the webhook for
// the same external identifier arrived first, the existing row is returned and
// no further quota is consumed.
func (g *Gateway) BookSession(ctx context.Context, in BookSessionInput) (*model.Booking, error) {
	now := g.now()

	exists, err := db.UserExists(ctx, g.db, in.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	booking := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		ExternalID:  in.ExternalID,
		ScheduledAt: in.Start.UTC(),
		Status:      model.BookingScheduled,
	}

	providerCreated := false
	if booking.ExternalID == "" {
		info, err := g.provider.CreateBooking(ctx, calcom.CreateBookingRequest{
			EventTypeID: in.EventTypeID,
			Start:       in.Start.UTC(),
			End:         in.End.UTC(),
			Metadata:    map[string]string{"userId": in.UserID},
		})
		if err != nil {
			return nil, err
		}
		providerCreated = true
		booking.ExternalID = info.UID
		booking.MeetingURL = info.MeetingURL
		booking.BookingURL = info.BookingURL
	}

	var result *model.Booking
	err = g.db.Transaction(func(tx *gorm.DB) error {
		created, err := db.InsertBookingIfAbsent(ctx, tx, booking)
		if err != nil {
			return err
		}
		if !created {
			// The webhook path got here first; this request is a no-op.
			existing, err := db.GetBookingByExternalID(ctx, tx, booking.ExternalID)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"externalID": booking.ExternalID}).
				Debug("booking already recorded, skipping quota claim")
			result = existing
			return nil
		}

		if _, err = ledger.TryConsume(ctx, tx, in.UserID, booking.ID, booking.ScheduledAt, now, g.defaultCap); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil && providerCreated {
		// The provider booking was made on behalf of this request; release the
		// slot so it doesn't linger, whatever caused the transaction to fail.
		reason := quotaExceededReason
		if !ledger.IsDenied(err) {
			reason = "booking could not be recorded"
		}
		if cerr := g.provider.CancelBooking(ctx, booking.ExternalID, reason); cerr != nil {
			log.WithFields(logrus.Fields{"externalID": booking.ExternalID}).
				Errorf("unable to release the orphaned provider booking: %s", cerr.Error())
		}
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CancelBooking handles the direct mutation path for cancelling a booking. The
// provider is told first: if that call fails, the local row stays SCHEDULED so
// a retry remains safe. The quota restore happens only if this caller is the
// one that flipped the status, which is what keeps a racing webhook delivery
// from restoring a second time. The row is re-read inside the transaction so
// that the restore week is decided from the same start time the flip was
// guarded on; a reschedule landing during the provider call can't feed a stale
// week into the restore.
func (g *Gateway) CancelBooking(ctx context.Context, userID, bookingID, reason string) (*model.Booking, error) {
	now := g.now()

	booking, err := db.GetBooking(ctx, g.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if booking.Status.Terminal() {
		log.WithFields(logrus.Fields{"booking": booking.ID, "status": booking.Status}).
			Info("booking already in a terminal state, nothing to cancel")
		return booking, nil
	}

	if reason == "" {
		reason = "Cancelled by the attendee"
	}
	if err = g.provider.CancelBooking(ctx, booking.ExternalID, reason); err != nil {
		return nil, err
	}

	err = g.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := db.GetBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return ErrBookingNotFound
		}

		flipped, err := db.TransitionFromScheduled(ctx, tx, fresh.ID, fresh.ScheduledAt, model.BookingCancelled)
		if err != nil {
			return err
		}
		if !flipped {
			log.WithFields(logrus.Fields{"booking": fresh.ID}).
				Info("booking was changed by another actor, skipping the quota restore")
			return nil
		}
		return ledger.Restore(ctx, tx, fresh.UserID, fresh.ID, fresh.ScheduledAt, now)
	})
	if err != nil {
		return nil, err
	}

	return db.GetBooking(ctx, g.db, booking.ID)
}

// CompleteBooking marks a session as held. Completion never touches the quota:
// the session was consumed when it was booked. Completing an already-terminal
// booking is a no-op.
func (g *Gateway) CompleteBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := db.GetBooking(ctx, g.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	flipped, err := db.TransitionFromScheduled(ctx, g.db, booking.ID, booking.ScheduledAt, model.BookingCompleted)
	if err != nil {
		return nil, err
	}
	if !flipped {
		log.WithFields(logrus.Fields{"booking": booking.ID, "status": booking.Status}).
			Info("booking already in a terminal state, not marking it completed")
	}

	return db.GetBooking(ctx, g.db, booking.ID)
}

// ProcessEvent handles one webhook event from the scheduling provider. Delivery
// is at-least-once and unordered, so every branch must tolerate arbitrary
// redelivery. A nil return acknowledges the event; an error asks the sender to
// redeliver it.
func (g *Gateway) ProcessEvent(ctx context.Context, ev *httpmodel.WebhookEvent) error {
	switch ev.TriggerEvent {
	case httpmodel.TriggerPing:
		return nil
	case httpmodel.TriggerBookingCreated:
		return g.handleBookingCreated(ctx, &ev.Payload)
	case httpmodel.TriggerBookingCancelled:
		return g.handleBookingCancelled(ctx, &ev.Payload)
	case httpmodel.TriggerBookingRescheduled:
		return g.handleBookingRescheduled(ctx, &ev.Payload)
	default:
		log.WithFields(logrus.Fields{"triggerEvent": ev.TriggerEvent}).
			Info("ignoring an unrecognized webhook event")
		return nil
	}
}

func (g *Gateway) handleBookingCreated(ctx context.Context, p *httpmodel.WebhookPayload) error {
	now := g.now()

	log := log.WithFields(logrus.Fields{"externalID": p.UID, "user": p.Metadata.UserID})

	if p.UID == "" {
		log.Warn("webhook event has no booking identifier, ignoring it")
		return nil
	}
	if p.Metadata.UserID == "" {
		log.Info("booking carries no application user, ignoring it")
		return nil
	}
	if p.StartTime.IsZero() {
		log.Warn("webhook event has no start time, ignoring it")
		return nil
	}

	booking := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      p.Metadata.UserID,
		ExternalID:  p.UID,
		ScheduledAt: p.StartTime.UTC(),
		Status:      model.BookingScheduled,
		MeetingURL:  p.MeetingURL,
		BookingURL:  p.BookingURL,
	}

	err := g.db.Transaction(func(tx *gorm.DB) error {
		created, err := db.InsertBookingIfAbsent(ctx, tx, booking)
		if err != nil {
			return err
		}
		if !created {
			// The direct mutation path (or an earlier delivery) already
			// recorded this booking and claimed the quota for it.
			log.Debug("booking already recorded, skipping quota claim")
			return nil
		}

		_, err = ledger.TryConsume(ctx, tx, booking.UserID, booking.ID, booking.ScheduledAt, now, g.defaultCap)
		return err
	})
	if ledger.IsDenied(err) {
		// The slot exists at the provider but can't be admitted here. Release
		// it upstream; if that fails the event is redelivered and we try again.
		log.Warnf("booking denied by the quota ledger: %s", err.Error())
		return g.provider.CancelBooking(ctx, p.UID, quotaExceededReason)
	}

	return err
}

func (g *Gateway) handleBookingCancelled(ctx context.Context, p *httpmodel.WebhookPayload) error {
	now := g.now()

	log := log.WithFields(logrus.Fields{"externalID": p.UID})

	booking, err := db.GetBookingByExternalID(ctx, g.db, p.UID)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Info("cancellation for a booking this service never tracked, ignoring it")
		return nil
	}

	// A cancellation initiated by anyone but the booking's owner is recorded as
	// a mentor cancellation; both terminal states restore the quota once.
	target := model.BookingCancelled
	if p.CancelledBy != "" && p.CancelledBy != booking.UserID {
		target = model.BookingMentorCancelled
	}

	// The start time is re-read inside the transaction: a reschedule committed
	// after the lookup above must drive the restore week, not the stale copy.
	return g.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := db.GetBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return nil
		}

		flipped, err := db.TransitionFromScheduled(ctx, tx, fresh.ID, fresh.ScheduledAt, target)
		if err != nil {
			return err
		}
		if !flipped {
			log.WithFields(logrus.Fields{"booking": fresh.ID}).
				Info("booking already cancelled, skipping the quota restore")
			return nil
		}
		return ledger.Restore(ctx, tx, fresh.UserID, fresh.ID, fresh.ScheduledAt, now)
	})
}

func (g *Gateway) handleBookingRescheduled(ctx context.Context, p *httpmodel.WebhookPayload) error {
	now := g.now()
	newStart := p.StartTime.UTC()

	log := log.WithFields(logrus.Fields{"externalID": p.UID})

	booking, err := db.GetBookingByExternalID(ctx, g.db, p.UID)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Info("reschedule for a booking this service never tracked, ignoring it")
		return nil
	}
	if booking.Status.Terminal() {
		log.WithFields(logrus.Fields{"booking": booking.ID, "status": booking.Status}).
			Info("booking already in a terminal state, ignoring the reschedule")
		return nil
	}

	// Which week the booking vacates is decided from the start time re-read
	// inside the transaction, so a concurrent cancel or duplicate reschedule
	// can't feed a stale old week into the restore. Cross-week moves admit the
	// destination week first, while the booking still occupies its old week: a
	// denial rolls everything back and leaves the old slot booked.
	err = g.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := db.GetBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.Status.Terminal() {
			return errConflict
		}

		// Moving within the same week never changes what the week's quota
		// counts, so only the start time is touched.
		if calendar.SameWeek(fresh.ScheduledAt, newStart) {
			moved, err := db.UpdateScheduledAt(ctx, tx, fresh.ID, fresh.ScheduledAt, newStart)
			if err != nil {
				return err
			}
			if !moved {
				return errConflict
			}
			return nil
		}

		if _, err := ledger.TryConsume(ctx, tx, fresh.UserID, fresh.ID, newStart, now, g.defaultCap); err != nil {
			return err
		}

		moved, err := db.UpdateScheduledAt(ctx, tx, fresh.ID, fresh.ScheduledAt, newStart)
		if err != nil {
			return err
		}
		if !moved {
			return errConflict
		}

		return ledger.Restore(ctx, tx, fresh.UserID, fresh.ID, fresh.ScheduledAt, now)
	})
	if err == errConflict {
		log.WithFields(logrus.Fields{"booking": booking.ID}).
			Info("booking was changed by another actor during the reschedule, ignoring it")
		return nil
	}

	return err
}
