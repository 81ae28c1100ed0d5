package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type PaymentGormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPaymentGormRepository(db *gorm.DB, timeout time.Duration) *PaymentGormRepository {
	return &PaymentGormRepository{db: db, timeout: timeout}
}

func (r *PaymentGormRepository) GetByID(
	ctx context.Context,
	id string,
) (*models.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var p models.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetByAppointment(
	ctx context.Context,
	appointmentID string,
) (*models.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// lockAppointment always runs before any payment row lock, so every
// transaction here takes locks in the same order.
func lockAppointment(tx *gorm.DB, id string) (*models.Appointment, error) {
	var ap models.Appointment
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (r *PaymentGormRepository) SaveInitiated(
	ctx context.Context,
	p *models.Payment,
	guard func(existing *models.Payment) error,
) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ap, err := lockAppointment(tx, p.AppointmentID)
		if err != nil {
			return err
		}
		if ap.Status != string(domain.StatusPending) {
			return domain.ErrNotPending
		}

		var prev *models.Payment
		var existing models.Payment
		err = tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("appointment_id = ?", p.AppointmentID).
			First(&existing).Error
		switch {
		case err == nil:
			prev = &existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if guard != nil {
			if err := guard(prev); err != nil {
				return err
			}
		}

		if prev != nil {
			p.ID = prev.ID
			p.CreatedAt = prev.CreatedAt
			if err := tx.Save(p).Error; err != nil {
				return err
			}
		} else if err := tx.Create(p).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PaymentOrder{
			OrderID:       p.GatewayOrderID,
			PaymentID:     p.ID,
			AppointmentID: p.AppointmentID,
			CreatedAt:     p.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		return tx.Model(ap).Updates(map[string]any{
			"payment_id":     p.ID,
			"payment_status": string(domain.PaymentInitiated),
			"updated_at":     p.UpdatedAt,
		}).Error
	})
}

func (r *PaymentGormRepository) Settle(
	ctx context.Context,
	ref payment.Ref,
	ev *payment.Event,
	fn payment.SettleFunc,
) (*models.Payment, *models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var outP models.Payment
	var outAp models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ev != nil && ev.Key != "" {
			res := tx.
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.WebhookEvent{
					Key:              ev.Key,
					Event:            ev.Name,
					GatewayPaymentID: ev.GatewayPaymentID,
					ProcessedAt:      time.Now().UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return payment.ErrEventProcessed
			}
		}

		found, err := findPayment(tx, ref)
		if err != nil {
			return err
		}

		ap, err := lockAppointment(tx, found.AppointmentID)
		if err != nil {
			return err
		}

		var p models.Payment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", found.ID).
			First(&p).Error; err != nil {
			return err
		}

		changed, err := fn(&p, ap)
		if err != nil {
			return err
		}

		if changed {
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			if err := tx.Save(ap).Error; err != nil {
				return err
			}
		}

		outP = p
		outAp = *ap
		return nil
	})

	if err != nil {
		return nil, nil, err
	}
	return &outP, &outAp, nil
}

// findPayment resolves ref to the payment's id and appointment without
// locking. An order id that is no longer current is looked up in the
// payment_orders history.
func findPayment(tx *gorm.DB, ref payment.Ref) (*models.Payment, error) {
	var found models.Payment
	q := tx.Model(&models.Payment{}).Select("id", "appointment_id")

	switch {
	case ref.ID != "":
		q = q.Where("id = ?", ref.ID)
	case ref.OrderID != "":
		err := tx.Model(&models.Payment{}).Select("id", "appointment_id").
			Where("gateway_order_id = ?", ref.OrderID).
			First(&found).Error
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var order models.PaymentOrder
		if err := tx.Where("order_id = ?", ref.OrderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, payment.ErrNotFound
			}
			return nil, err
		}
		q = q.Where("id = ?", order.PaymentID)
	case ref.GatewayPaymentID != "":
		q = q.Where("gateway_payment_id = ?", ref.GatewayPaymentID)
	default:
		return nil, payment.ErrNotFound
	}

	if err := q.First(&found).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}
	return &found, nil
}

var _ payment.Repository = (*PaymentGormRepository)(nil)
