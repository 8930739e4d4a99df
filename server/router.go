package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mentorhub/bookings/config"
	"github.com/mentorhub/bookings/internal/controllers"
	"github.com/sirupsen/logrus"
	echolog "github.com/spirosoik/echo-logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func InitRouter() *echo.Echo {
	log := log.WithFields(logrus.Fields{"context": "router"})

	// Create the web server.
	e := echo.New()

	// Set a custom logger.
	echoLogger := echolog.NewLoggerMiddleware(log)
	e.Logger = echoLogger

	// Add middleware.
	e.Use(otelecho.Middleware(config.ServiceName))
	e.Use(echoLogger.Hook())
	e.Use(middleware.Recover())

	return e
}

func registerUserEndpoints(users *echo.Group, s *controllers.Server) {
	// Lists all of the users.
	users.GET("", s.GetAllUsers)

	// Adds a user or updates the mentorship flag on an existing one.
	users.PUT("/:user-id", s.AddUser)

	// Gets the user's weekly session quota.
	users.GET("/:user-id/quota", s.GetUserQuota)

	// Sets the user's weekly session cap.
	users.POST("/:user-id/quota", s.AddQuota)

	// Lists the audit trail of the user's quota adjustments.
	users.GET("/:user-id/quota/updates", s.GetQuotaUpdates)

	// Lists all of the user's bookings.
	users.GET("/:user-id/bookings", s.ListUserBookings)
}

func registerBookingEndpoints(bookings *echo.Group, s *controllers.Server) {
	// Books a mentorship session.
	bookings.POST("", s.AddBooking)

	// Gets the details of one booking.
	bookings.GET("/:booking-id", s.GetBooking)

	// Cancels a booking on behalf of its owner.
	bookings.DELETE("/:booking-id", s.CancelBooking)

	// Marks a session as held.
	bookings.POST("/:booking-id/complete", s.CompleteBooking)
}

func RegisterHandlers(s controllers.Server) {

	// The base URL acts as a health check endpoint.
	s.Router.GET("/", s.RootHandler)

	// The scheduling provider delivers signed booking events here.
	s.Router.POST("/webhooks/calcom", s.HandleWebhook)

	// API version 1 endpoints.
	v1 := s.Router.Group("/v1")
	v1.GET("", s.V1RootHandler)

	users := v1.Group("/users")
	registerUserEndpoints(users, &s)

	bookings := v1.Group("/bookings")
	registerBookingEndpoints(bookings, &s)

	// Runs the weekly quota reset sweep immediately.
	v1.POST("/resets", s.TriggerResets)
}
