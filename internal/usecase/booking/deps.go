package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/clock"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// SystemActor is recorded as cancelledBy when the sweeper expires a booking.
const SystemActor = "system"

type Deps struct {
	Appointments domain.Repository
	Users        catalog.UserDirectory
	Salons       catalog.SalonCatalog
	Authz        catalog.Authorizer
	Locker       cache.Locker
	Pricing      *domain.PricingCalculator
	Clock        clock.Clock
	Audit        audit.Auditor
	Events       events.Publisher
	Metrics      *metrics.Metrics
	Log          *zap.Logger

	Currency      string
	LockTimeout   time.Duration
	PaymentWindow time.Duration
}

func (d Deps) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	ap, err := d.Appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.NotFound("appointment_not_found", "")
		}
		return nil, err
	}
	return ap, nil
}

// canManage reports whether actor may act on the salon side of an
// appointment (owner or admin).
func (d Deps) canManage(ctx context.Context, actorID string, ap *models.Appointment) (bool, error) {
	return d.Authz.Authorize(ctx, actorID, catalog.ActionAppointmentManage, catalog.Resource{
		Kind:    "appointment",
		ID:      ap.ID,
		SalonID: ap.SalonID,
	})
}

func (d Deps) publish(ctx context.Context, typ string, ap *models.Appointment) {
	ev := events.FromAppointment(typ, ap, d.Clock.Now())
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Log.Warn("publish event failed",
			zap.String("type", typ),
			zap.String("appointment_id", ap.ID),
			zap.Error(err),
		)
	}
}

func (d Deps) record(actorID, action string, ap *models.Appointment, meta any) {
	d.Audit.Dispatch(audit.Event{
		SalonID:  ap.SalonID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: meta,
		At:       d.Clock.Now(),
	})
}
