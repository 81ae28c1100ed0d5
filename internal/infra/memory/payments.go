package memory

import (
	"context"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Payments exposes the payment port of a Store. It shares the store's
// mutex, so Settle sees both rows atomically.
type Payments struct {
	s *Store
}

func (s *Store) Payments() *Payments {
	return &Payments{s: s}
}

func (r *Payments) GetByID(_ context.Context, id string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	cp := copyPayment(p)
	return &cp, nil
}

func (r *Payments) GetByAppointment(_ context.Context, appointmentID string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.payments {
		if p.AppointmentID == appointmentID {
			cp := copyPayment(p)
			return &cp, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (r *Payments) SaveInitiated(
	_ context.Context,
	p *models.Payment,
	guard func(existing *models.Payment) error,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ap, ok := r.s.appointments[p.AppointmentID]
	if !ok {
		return domain.ErrNotFound
	}
	if ap.Status != string(domain.StatusPending) {
		return domain.ErrNotPending
	}

	var existing *models.Payment
	for _, cur := range r.s.payments {
		if cur.AppointmentID == p.AppointmentID {
			cp := copyPayment(cur)
			existing = &cp
			break
		}
	}

	if guard != nil {
		if err := guard(existing); err != nil {
			return err
		}
	}

	if existing != nil {
		delete(r.s.payments, existing.ID)
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	r.s.payments[p.ID] = copyPayment(*p)
	if _, ok := r.s.orders[p.GatewayOrderID]; !ok {
		r.s.orders[p.GatewayOrderID] = p.ID
	}

	ap.PaymentID = p.ID
	ap.PaymentStatus = string(domain.PaymentInitiated)
	ap.UpdatedAt = p.UpdatedAt
	r.s.appointments[ap.ID] = ap
	return nil
}

func (r *Payments) find(ref payment.Ref) (models.Payment, bool) {
	if ref.ID != "" {
		p, ok := r.s.payments[ref.ID]
		return p, ok
	}
	for _, p := range r.s.payments {
		if ref.OrderID != "" && p.GatewayOrderID == ref.OrderID {
			return p, true
		}
		if ref.OrderID == "" && ref.GatewayPaymentID != "" && p.GatewayPaymentID == ref.GatewayPaymentID {
			return p, true
		}
	}
	if id, ok := r.s.orders[ref.OrderID]; ok && ref.OrderID != "" {
		p, ok := r.s.payments[id]
		return p, ok
	}
	return models.Payment{}, false
}

func (r *Payments) Settle(
	_ context.Context,
	ref payment.Ref,
	ev *payment.Event,
	fn payment.SettleFunc,
) (*models.Payment, *models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ev != nil && ev.Key != "" {
		if _, seen := r.s.events[ev.Key]; seen {
			return nil, nil, payment.ErrEventProcessed
		}
	}

	cur, ok := r.find(ref)
	if !ok {
		return nil, nil, payment.ErrNotFound
	}
	ap, ok := r.s.appointments[cur.AppointmentID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}

	p := copyPayment(cur)
	a := copyAppointment(ap)

	changed, err := fn(&p, &a)
	if err != nil {
		return nil, nil, err
	}

	if changed {
		r.s.payments[p.ID] = copyPayment(p)
		r.s.appointments[a.ID] = copyAppointment(a)
	}
	if ev != nil && ev.Key != "" {
		r.s.events[ev.Key] = models.WebhookEvent{
			Key:              ev.Key,
			Event:            ev.Name,
			GatewayPaymentID: ev.GatewayPaymentID,
			ProcessedAt:      p.UpdatedAt,
		}
	}

	return &p, &a, nil
}

var _ payment.Repository = (*Payments)(nil)
