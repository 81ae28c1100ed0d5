package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
	ucPayment "github.com/BruksfildServices01/salon-booking/internal/usecase/payment"
)

// Services carries the wired dependencies the HTTP layer builds use cases from.
type Services struct {
	Booking booking.Deps
	Payment ucPayment.Deps
	Checks  map[string]handlers.CheckFunc
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc Services) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(svc.Log))
	r.Use(svc.Metrics.Middleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// BOOKING USE CASES
	// ======================================================
	createBookingUC := booking.NewCreateBooking(svc.Booking)
	cancelBookingUC := booking.NewCancelBooking(svc.Booking)
	startUC := booking.NewStartAppointment(svc.Booking)
	completeUC := booking.NewCompleteAppointment(svc.Booking)
	getUC := booking.NewGetAppointment(svc.Booking)
	listMineUC := booking.NewListMyAppointments(svc.Booking)
	availabilityUC := booking.NewGetAvailability(svc.Booking)

	// ======================================================
	// PAYMENT USE CASES
	// ======================================================
	settler := ucPayment.NewSettler(svc.Payment)
	initiateUC := ucPayment.NewInitiatePayment(svc.Payment)
	verifyUC := ucPayment.NewVerifyPayment(svc.Payment, settler)
	refundUC := ucPayment.NewRefundPayment(svc.Payment, settler)
	webhookUC := ucPayment.NewHandleWebhook(svc.Payment, settler)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(
		createBookingUC,
		cancelBookingUC,
		startUC,
		completeUC,
		getUC,
		listMineUC,
		availabilityUC,
		svc.Log,
	)
	paymentHandler := handlers.NewPaymentHandler(initiateUC, verifyUC, refundUC, svc.Log)
	webhookHandler := handlers.NewWebhookHandler(webhookUC, svc.Log)
	healthHandler := handlers.NewHealthHandler(svc.Checks, svc.Log)

	// ======================================================
	// PUBLIC
	// ======================================================
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", svc.Metrics.Handler())

	api := r.Group("/api")

	// gateway callbacks are authenticated by signature, not JWT
	api.POST("/webhooks/payments", webhookHandler.Payments)

	// ======================================================
	// AUTHENTICATED
	// ======================================================
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, svc.Log)

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	auth.Use(limiter.Middleware())
	{
		auth.POST("/appointments", appointmentHandler.Create)
		auth.GET("/appointments/:id", appointmentHandler.Get)
		auth.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		auth.PATCH("/appointments/:id/start", appointmentHandler.Start)
		auth.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
		auth.POST("/appointments/:id/payments", paymentHandler.Initiate)

		auth.GET("/me/appointments", appointmentHandler.ListMine)
		auth.GET("/salons/:salonId/availability", appointmentHandler.Availability)

		auth.POST("/payments/verify", paymentHandler.Verify)
		auth.POST("/payments/:id/refund", paymentHandler.Refund)
	}
}
