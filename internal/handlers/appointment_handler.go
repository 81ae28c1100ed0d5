package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *booking.CreateBooking
	cancel       *booking.CancelBooking
	start        *booking.StartAppointment
	complete     *booking.CompleteAppointment
	get          *booking.GetAppointment
	listMine     *booking.ListMyAppointments
	availability *booking.GetAvailability
	log          *zap.Logger
}

func NewAppointmentHandler(
	create *booking.CreateBooking,
	cancel *booking.CancelBooking,
	start *booking.StartAppointment,
	complete *booking.CompleteAppointment,
	get *booking.GetAppointment,
	listMine *booking.ListMyAppointments,
	availability *booking.GetAvailability,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		cancel:       cancel,
		start:        start,
		complete:     complete,
		get:          get,
		listMine:     listMine,
		availability: availability,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	SalonID     string   `json:"salon_id" binding:"required"`
	BarberID    string   `json:"barber_id"`
	ServiceIDs  []string `json:"service_ids" binding:"required"`
	ScheduledAt string   `json:"scheduled_at" binding:"required"`
	Location    struct {
		Type    string `json:"type" binding:"required"`
		Address string `json:"address"`
	} `json:"location" binding:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	scheduledAt, err := parseTime(req.ScheduledAt)
	if err != nil {
		httperr.BadRequest(c, "invalid_scheduled_at", "scheduled_at must be RFC 3339.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), booking.CreateBookingInput{
		UserID:       middleware.ActorID(c),
		SalonID:      req.SalonID,
		BarberID:     req.BarberID,
		ServiceIDs:   req.ServiceIDs,
		ScheduledAt:  scheduledAt,
		LocationType: req.Location.Type,
		Address:      req.Location.Address,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.Appointment(ap))
}

// ======================================================
// LIFECYCLE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid request body.")
			return
		}
	}

	ap, err := h.cancel.Execute(c.Request.Context(), booking.CancelBookingInput{
		AppointmentID: c.Param("id"),
		ActorID:       middleware.ActorID(c),
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.Appointment(ap))
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	ap, err := h.start.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, dto.Appointment(ap))
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	ap, err := h.complete.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, dto.Appointment(ap))
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.get.Execute(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}
	httpresp.OK(c, dto.Appointment(ap))
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"))
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "from must be a date or RFC 3339 time.")
		return
	}
	to, err := parseOptionalTime(c.Query("to"))
	if err != nil {
		httperr.BadRequest(c, "invalid_to", "to must be a date or RFC 3339 time.")
		return
	}

	aps, err := h.listMine.Execute(c.Request.Context(), booking.ListMyAppointmentsInput{
		UserID: middleware.ActorID(c),
		From:   from,
		To:     to,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.List(c, dto.Appointments(aps))
}

func (h *AppointmentHandler) Availability(c *gin.Context) {
	start, err := parseTime(c.Query("start"))
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "start must be RFC 3339.")
		return
	}
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		httperr.BadRequest(c, "invalid_duration", "duration must be minutes.")
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), booking.AvailabilityInput{
		SalonID:         c.Param("salonId"),
		BarberID:        c.Query("barber_id"),
		Start:           start,
		DurationMinutes: duration,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.AvailabilityDTO{
		SalonID:   c.Param("salonId"),
		BarberID:  c.Query("barber_id"),
		Start:     out.Start,
		End:       out.End,
		Available: out.Available,
	})
}
