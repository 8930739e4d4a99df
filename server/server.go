package server

import (
	"fmt"
	"time"

	"github.com/mentorhub/bookings/config"
	"github.com/mentorhub/bookings/internal/calcom"
	"github.com/mentorhub/bookings/internal/controllers"
	"github.com/mentorhub/bookings/internal/db"
	"github.com/mentorhub/bookings/internal/reconcile"
	"github.com/mentorhub/bookings/internal/scheduler"
	"github.com/mentorhub/bookings/logging"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "server"})

func Init(spec *config.Specification) {
	log := log.WithFields(logrus.Fields{"context": "server init"})

	e := InitRouter()

	// Establish the database connection.
	log.Info("establishing the database connection")
	conn, gormdb, err := db.Init("postgres", spec.DatabaseURI)
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	// Build the scheduling provider client and the reconciliation gateway.
	provider := calcom.NewClient(spec.CalAPIBaseURL, spec.CalAPIKey)
	gateway := reconcile.New(gormdb, provider, spec.DefaultSessionCap)

	// Start the weekly quota reset scheduler.
	resetScheduler := scheduler.NewResetScheduler(gormdb, time.Duration(spec.ResetCheckInterval)*time.Minute)
	resetScheduler.Start()
	defer resetScheduler.Stop()

	s := controllers.Server{
		Router:            e,
		DB:                conn,
		GORMDB:            gormdb,
		Gateway:           gateway,
		ResetScheduler:    resetScheduler,
		Service:           config.ServiceName,
		Version:           "1.0.0",
		WebhookSecret:     spec.CalWebhookSecret,
		DefaultSessionCap: spec.DefaultSessionCap,
	}

	// Register the handlers.
	RegisterHandlers(s)

	log.Info("starting the service")
	log.Fatal(e.Start(fmt.Sprintf(":%d", spec.ListenPort)))
}
