package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func TestFindPayment_FallsBackToOrderHistory(t *testing.T) {
	db, mock := setupGorm(t)

	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE gateway_order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "appointment_id"}))
	mock.ExpectQuery(`SELECT \* FROM "payment_orders" WHERE order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "payment_id", "appointment_id", "created_at"}).
			AddRow("order-old", "pay-1", "ap-1", time.Now()))
	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "appointment_id"}).AddRow("pay-1", "ap-1"))

	p, err := findPayment(db, payment.Ref{OrderID: "order-old"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.ID != "pay-1" || p.AppointmentID != "ap-1" {
		t.Fatalf("unexpected payment %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestFindPayment_UnknownOrder(t *testing.T) {
	db, mock := setupGorm(t)

	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE gateway_order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "appointment_id"}))
	mock.ExpectQuery(`SELECT \* FROM "payment_orders" WHERE order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "payment_id", "appointment_id", "created_at"}))

	if _, err := findPayment(db, payment.Ref{OrderID: "order-x"}); !errors.Is(err, payment.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestPaymentRepo_SaveInitiatedRequiresPendingAppointment(t *testing.T) {
	db, mock := setupGorm(t)
	repo := NewPaymentGormRepository(db, time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "status"}).
			AddRow("ap-1", "salon-1", "cancelled"))
	mock.ExpectRollback()

	err := repo.SaveInitiated(context.Background(), &models.Payment{
		ID:             "pay-1",
		AppointmentID:  "ap-1",
		GatewayOrderID: "order-1",
	}, func(*models.Payment) error {
		t.Fatal("guard must not run for a cancelled appointment")
		return nil
	})
	if !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("want ErrNotPending, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
