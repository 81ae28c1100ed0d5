// Package memory holds in-process implementations of the repository and
// catalog ports. They keep the same locking and conflict semantics as the
// postgres repositories and back the use case tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Store struct {
	mu sync.Mutex

	appointments map[string]models.Appointment
	payments     map[string]models.Payment
	events       map[string]models.WebhookEvent
	// order id -> payment id, including superseded orders
	orders map[string]string

	users  map[string]catalog.User
	salons map[string]catalog.Salon
}

func NewStore() *Store {
	return &Store{
		appointments: make(map[string]models.Appointment),
		payments:     make(map[string]models.Payment),
		events:       make(map[string]models.WebhookEvent),
		orders:       make(map[string]string),
		users:        make(map[string]catalog.User),
		salons:       make(map[string]catalog.Salon),
	}
}

func copyAppointment(ap models.Appointment) models.Appointment {
	ap.ServiceIDs = append([]string(nil), ap.ServiceIDs...)
	return ap
}

func copyPayment(p models.Payment) models.Payment {
	if p.Metadata != nil {
		meta := make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			meta[k] = v
		}
		p.Metadata = meta
	}
	return p
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (s *Store) PutUser(u catalog.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutSalon(salon catalog.Salon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	salon.Services = append([]catalog.Service(nil), salon.Services...)
	s.salons[salon.ID] = salon
}

func (s *Store) GetUser(_ context.Context, id string) (*catalog.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, catalog.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetSalon(_ context.Context, id string) (*catalog.Salon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	salon, ok := s.salons[id]
	if !ok {
		return nil, catalog.ErrSalonNotFound
	}
	salon.Services = append([]catalog.Service(nil), salon.Services...)
	return &salon, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (s *Store) Create(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.appointments[ap.ID]; exists {
		return httperr.Conflict("appointment_exists", "")
	}

	start, end := domain.Window(ap)
	for _, other := range s.appointments {
		if other.SalonID != ap.SalonID || !domain.SharesBarber(other.BarberID, ap.BarberID) {
			continue
		}
		if !domain.Status(other.Status).IsActive() {
			continue
		}
		oStart, oEnd := domain.Window(&other)
		if domain.Overlaps(oStart, oEnd, start, end) {
			return httperr.Conflict("slot_unavailable", "")
		}
	}

	s.appointments[ap.ID] = copyAppointment(*ap)
	return nil
}

func (s *Store) ListActiveOverlapping(
	_ context.Context,
	salonID string,
	barberID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.appointments {
		if ap.SalonID != salonID {
			continue
		}
		if !domain.SharesBarber(barberID, ap.BarberID) {
			continue
		}
		if !domain.Status(ap.Status).IsActive() {
			continue
		}
		if ap.ScheduledAt.Before(end) && ap.EndsAt.After(start) {
			out = append(out, copyAppointment(ap))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok := s.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyAppointment(ap)
	return &cp, nil
}

func (s *Store) ListForUser(
	_ context.Context,
	userID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.appointments {
		if ap.UserID != userID {
			continue
		}
		if ap.ScheduledAt.Before(start) || !ap.ScheduledAt.Before(end) {
			continue
		}
		out = append(out, copyAppointment(ap))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *Store) Mutate(_ context.Context, id string, fn domain.MutateFunc) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	work := copyAppointment(cur)
	changed, err := fn(&work)
	if err != nil {
		return nil, err
	}
	if changed {
		s.appointments[id] = copyAppointment(work)
	}
	return &work, nil
}

func (s *Store) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.appointments {
		if ap.Status != string(domain.StatusPending) {
			continue
		}
		if ap.PaymentStatus == string(domain.PaymentSuccessful) {
			continue
		}
		if !ap.CreatedAt.Before(createdBefore) {
			continue
		}
		out = append(out, copyAppointment(ap))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ domain.Repository = (*Store)(nil)
var _ catalog.UserDirectory = (*Store)(nil)
var _ catalog.SalonCatalog = (*Store)(nil)
