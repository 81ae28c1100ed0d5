package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/clock"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/infra/memory"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	now      = time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	slot2pm  = time.Date(2030, 3, 1, 14, 0, 0, 0, time.UTC)
	ctxBg    = context.Background()
	allUsers = []catalog.User{
		{ID: "cust-1", IsActive: true, Role: catalog.RoleCustomer},
		{ID: "cust-2", IsActive: true, Role: catalog.RoleCustomer},
		{ID: "cust-off", IsActive: false, Role: catalog.RoleCustomer},
		{ID: "owner-1", IsActive: true, Role: catalog.RoleOwner},
		{ID: "owner-2", IsActive: true, Role: catalog.RoleOwner},
	}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type fixture struct {
	deps  Deps
	store *memory.Store
	clock *clock.Fixed
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	for _, u := range allUsers {
		store.PutUser(u)
	}
	store.PutSalon(catalog.Salon{
		ID:       "salon-1",
		IsActive: true,
		OwnerID:  "owner-1",
		Services: []catalog.Service{
			{ID: "cut", Price: 500, DurationMin: 30, IsActive: true},
			{ID: "beard", Price: 300, DurationMin: 15, IsActive: true},
			{ID: "colour", Price: 1000, DurationMin: 60, IsActive: true},
			{ID: "trim", Price: 200, DurationMin: 10, IsActive: true},
			{ID: "retired", Price: 100, DurationMin: 15, IsActive: false},
		},
	})
	store.PutSalon(catalog.Salon{ID: "salon-closed", IsActive: false, OwnerID: "owner-2"})

	clk := clock.NewFixed(now)
	pub := &recordingPublisher{}

	return &fixture{
		deps: Deps{
			Appointments:  store,
			Users:         store,
			Salons:        store,
			Authz:         catalog.NewRoleAuthorizer(store, store),
			Locker:        cache.NewMemoryLocker(),
			Pricing:       domain.NewPricingCalculator(10, 5),
			Clock:         clk,
			Audit:         audit.Discard{},
			Events:        pub,
			Metrics:       metrics.New(),
			Log:           zaptest.NewLogger(t),
			Currency:      "BRL",
			LockTimeout:   time.Second,
			PaymentWindow: 30 * time.Minute,
		},
		store: store,
		clock: clk,
		pub:   pub,
	}
}

func (f *fixture) book(t *testing.T, in CreateBookingInput) *models.Appointment {
	t.Helper()
	ap, err := NewCreateBooking(f.deps).Execute(ctxBg, in)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return ap
}

func salonBooking(user string, at time.Time, services ...string) CreateBookingInput {
	return CreateBookingInput{
		UserID:       user,
		SalonID:      "salon-1",
		BarberID:     "barber-1",
		ServiceIDs:   services,
		ScheduledAt:  at,
		LocationType: domain.LocationSalon,
	}
}

func TestCreateBooking_HomePricing(t *testing.T) {
	f := newFixture(t)

	ap := f.book(t, CreateBookingInput{
		UserID:       "cust-1",
		SalonID:      "salon-1",
		ServiceIDs:   []string{"cut", "beard", "cut"},
		ScheduledAt:  slot2pm,
		LocationType: domain.LocationHome,
		Address:      "Rua A, 10",
	})

	want := models.Pricing{Services: 800, HomeServiceFee: 80, PlatformFee: 44, Total: 924}
	if ap.Pricing != want {
		t.Fatalf("pricing = %+v, want %+v", ap.Pricing, want)
	}
	if len(ap.ServiceIDs) != 2 || ap.ServiceIDs[0] != "beard" || ap.ServiceIDs[1] != "cut" {
		t.Errorf("service ids not normalised: %v", ap.ServiceIDs)
	}
	if ap.DurationMinutes != 45 || !ap.EndsAt.Equal(slot2pm.Add(45*time.Minute)) {
		t.Errorf("duration %d ends %v", ap.DurationMinutes, ap.EndsAt)
	}
	if ap.Status != "pending" || ap.PaymentStatus != "initiated" || ap.Currency != "BRL" {
		t.Errorf("unexpected initial state: %s/%s/%s", ap.Status, ap.PaymentStatus, ap.Currency)
	}
	if f.pub.count(events.AppointmentCreated) != 1 {
		t.Error("expected one appointment.created event")
	}
}

func TestCreateBooking_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   CreateBookingInput
		kind httperr.Kind
		code string
	}{
		{"no services", salonBooking("cust-1", slot2pm), httperr.KindValidation, "services_required"},
		{"inactive service", salonBooking("cust-1", slot2pm, "retired"), httperr.KindValidation, "invalid_service"},
		{"foreign service", salonBooking("cust-1", slot2pm, "massage"), httperr.KindValidation, "invalid_service"},
		{"past", salonBooking("cust-1", now.Add(-time.Hour), "cut"), httperr.KindValidation, "scheduled_in_past"},
		{"now", salonBooking("cust-1", now, "cut"), httperr.KindValidation, "scheduled_in_past"},
		{"unknown user", salonBooking("ghost", slot2pm, "cut"), httperr.KindNotFound, "user_not_found"},
		{"inactive user", salonBooking("cust-off", slot2pm, "cut"), httperr.KindForbidden, "user_inactive"},
		{"too short", salonBooking("cust-1", slot2pm, "trim"), httperr.KindValidation, "invalid_duration"},
		{"home without address", CreateBookingInput{
			UserID: "cust-1", SalonID: "salon-1", ServiceIDs: []string{"cut"},
			ScheduledAt: slot2pm, LocationType: domain.LocationHome,
		}, httperr.KindValidation, "address_required"},
		{"bad location", CreateBookingInput{
			UserID: "cust-1", SalonID: "salon-1", ServiceIDs: []string{"cut"},
			ScheduledAt: slot2pm, LocationType: "office",
		}, httperr.KindValidation, "invalid_location_type"},
		{"unknown salon", CreateBookingInput{
			UserID: "cust-1", SalonID: "nope", ServiceIDs: []string{"cut"},
			ScheduledAt: slot2pm, LocationType: domain.LocationSalon,
		}, httperr.KindNotFound, "salon_not_found"},
		{"inactive salon", CreateBookingInput{
			UserID: "cust-1", SalonID: "salon-closed", ServiceIDs: []string{"cut"},
			ScheduledAt: slot2pm, LocationType: domain.LocationSalon,
		}, httperr.KindValidation, "salon_inactive"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := NewCreateBooking(f.deps).Execute(ctxBg, tc.in)
			if !httperr.IsKind(err, tc.kind) || !httperr.IsBusiness(err, tc.code) {
				t.Fatalf("want %s/%s, got %v", tc.kind, tc.code, err)
			}
		})
	}
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.deps)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			user := "cust-1"
			if i == 1 {
				user = "cust-2"
			}
			_, errs[i] = uc.Execute(ctxBg, salonBooking(user, slot2pm, "cut"))
		}(i)
	}
	close(start)
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case httperr.IsBusiness(err, "slot_unavailable") && httperr.IsKind(err, httperr.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("ok=%d conflicts=%d, want 1/1", ok, conflicts)
	}
}

func TestCreateBooking_OverlapRules(t *testing.T) {
	f := newFixture(t)
	f.book(t, salonBooking("cust-1", slot2pm, "cut")) // 14:00-14:30

	uc := NewCreateBooking(f.deps)

	if _, err := uc.Execute(ctxBg, salonBooking("cust-2", slot2pm.Add(15*time.Minute), "cut")); !httperr.IsBusiness(err, "slot_unavailable") {
		t.Fatalf("partial overlap: want conflict, got %v", err)
	}

	// back to back
	if _, err := uc.Execute(ctxBg, salonBooking("cust-2", slot2pm.Add(30*time.Minute), "cut")); err != nil {
		t.Fatalf("back to back should be allowed: %v", err)
	}

	// another barber at the same time
	other := salonBooking("cust-2", slot2pm, "cut")
	other.BarberID = "barber-2"
	if _, err := uc.Execute(ctxBg, other); err != nil {
		t.Fatalf("other barber should be free: %v", err)
	}

	// salon-wide booking against a busy barber
	anyBarber := salonBooking("cust-2", slot2pm, "cut")
	anyBarber.BarberID = ""
	if _, err := uc.Execute(ctxBg, anyBarber); !httperr.IsBusiness(err, "slot_unavailable") {
		t.Fatalf("salon-wide over barber booking: want conflict, got %v", err)
	}
}

func TestCreateBooking_SalonWideBlocksLaterBarberBooking(t *testing.T) {
	f := newFixture(t)

	anyBarber := salonBooking("cust-1", slot2pm, "cut")
	anyBarber.BarberID = ""
	f.book(t, anyBarber)

	uc := NewCreateBooking(f.deps)
	for _, barber := range []string{"barber-1", "barber-2"} {
		in := salonBooking("cust-2", slot2pm.Add(10*time.Minute), "cut")
		in.BarberID = barber
		if _, err := uc.Execute(ctxBg, in); !httperr.IsBusiness(err, "slot_unavailable") {
			t.Fatalf("%s after salon-wide booking: want conflict, got %v", barber, err)
		}
	}

	// the store rejects it even without the checker
	ap := &models.Appointment{
		ID:              "direct",
		UserID:          "cust-2",
		SalonID:         "salon-1",
		BarberID:        "barber-1",
		ScheduledAt:     slot2pm,
		EndsAt:          slot2pm.Add(30 * time.Minute),
		DurationMinutes: 30,
		Status:          string(domain.StatusPending),
	}
	if err := f.store.Create(ctxBg, ap); !httperr.IsBusiness(err, "slot_unavailable") {
		t.Fatalf("store insert: want conflict, got %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, salonBooking("cust-1", slot2pm, "cut"))
	uc := NewCancelBooking(f.deps)

	_, err := uc.Execute(ctxBg, CancelBookingInput{AppointmentID: ap.ID, ActorID: "cust-2"})
	if !httperr.IsKind(err, httperr.KindForbidden) {
		t.Fatalf("stranger: want forbidden, got %v", err)
	}
	_, err = uc.Execute(ctxBg, CancelBookingInput{AppointmentID: ap.ID, ActorID: "owner-2"})
	if !httperr.IsKind(err, httperr.KindForbidden) {
		t.Fatalf("other salon owner: want forbidden, got %v", err)
	}

	got, err := uc.Execute(ctxBg, CancelBookingInput{AppointmentID: ap.ID, ActorID: "owner-1", Reason: "closed"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "cancelled" || got.CancelledBy != "owner-1" || got.CancelReason != "closed" || got.CancelledAt == nil {
		t.Fatalf("cancel not recorded: %+v", got)
	}

	_, err = uc.Execute(ctxBg, CancelBookingInput{AppointmentID: ap.ID, ActorID: "cust-1"})
	if !httperr.IsKind(err, httperr.KindState) {
		t.Fatalf("second cancel: want state error, got %v", err)
	}

	_, err = uc.Execute(ctxBg, CancelBookingInput{AppointmentID: "missing", ActorID: "cust-1"})
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("missing: want not found, got %v", err)
	}

	// slot is free again
	f.book(t, salonBooking("cust-2", slot2pm, "cut"))
}

func TestStartAndComplete(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, salonBooking("cust-1", slot2pm, "cut"))

	start := NewStartAppointment(f.deps)
	complete := NewCompleteAppointment(f.deps)

	if _, err := start.Execute(ctxBg, ap.ID, "cust-1"); !httperr.IsKind(err, httperr.KindForbidden) {
		t.Fatalf("customer start: want forbidden, got %v", err)
	}
	if _, err := start.Execute(ctxBg, ap.ID, "owner-1"); !httperr.IsKind(err, httperr.KindState) {
		t.Fatalf("start pending: want state error, got %v", err)
	}

	if _, err := f.store.Mutate(ctxBg, ap.ID, func(ap *models.Appointment) (bool, error) {
		return true, domain.Confirm(ap, now)
	}); err != nil {
		t.Fatal(err)
	}

	got, err := start.Execute(ctxBg, ap.ID, "owner-1")
	if err != nil || got.Status != "in_progress" || got.StartedAt == nil {
		t.Fatalf("start: %+v %v", got, err)
	}
	got, err = complete.Execute(ctxBg, ap.ID, "owner-1")
	if err != nil || got.Status != "completed" || got.CompletedAt == nil {
		t.Fatalf("complete: %+v %v", got, err)
	}

	if _, err := NewCancelBooking(f.deps).Execute(ctxBg, CancelBookingInput{AppointmentID: ap.ID, ActorID: "owner-1"}); !httperr.IsKind(err, httperr.KindState) {
		t.Fatalf("cancel completed: want state error, got %v", err)
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, salonBooking("cust-1", slot2pm, "cut"))
	f.book(t, salonBooking("cust-1", slot2pm.AddDate(0, 0, 7), "cut"))

	get := NewGetAppointment(f.deps)
	if _, err := get.Execute(ctxBg, ap.ID, "owner-1"); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := get.Execute(ctxBg, ap.ID, "cust-2"); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("stranger get: want not found, got %v", err)
	}

	list := NewListMyAppointments(f.deps)
	got, err := list.Execute(ctxBg, ListMyAppointmentsInput{UserID: "cust-1"})
	if err != nil || len(got) != 2 {
		t.Fatalf("list: %d %v", len(got), err)
	}
	got, err = list.Execute(ctxBg, ListMyAppointmentsInput{
		UserID: "cust-1",
		From:   slot2pm,
		To:     slot2pm.Add(24 * time.Hour),
	})
	if err != nil || len(got) != 1 {
		t.Fatalf("list window: %d %v", len(got), err)
	}
	if _, err := list.Execute(ctxBg, ListMyAppointmentsInput{UserID: "cust-1", From: slot2pm, To: slot2pm}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("empty window: want validation, got %v", err)
	}
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)
	f.book(t, salonBooking("cust-1", slot2pm, "cut"))
	uc := NewGetAvailability(f.deps)

	cases := []struct {
		name     string
		barber   string
		start    time.Time
		duration int
		want     bool
	}{
		{"same barber overlapping", "barber-1", slot2pm.Add(10 * time.Minute), 30, false},
		{"any barber overlapping", "", slot2pm, 30, false},
		{"other barber", "barber-2", slot2pm, 30, true},
		{"right after", "barber-1", slot2pm.Add(30 * time.Minute), 30, true},
		{"in the past", "barber-1", now.Add(-2 * time.Hour), 30, false},
	}
	for _, tc := range cases {
		out, err := uc.Execute(ctxBg, AvailabilityInput{
			SalonID: "salon-1", BarberID: tc.barber, Start: tc.start, DurationMinutes: tc.duration,
		})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if out.Available != tc.want {
			t.Errorf("%s: available=%v, want %v", tc.name, out.Available, tc.want)
		}
	}

	if _, err := uc.Execute(ctxBg, AvailabilityInput{SalonID: "salon-1", Start: slot2pm, DurationMinutes: 0}); !httperr.IsKind(err, httperr.KindValidation) {
		t.Fatalf("zero duration: want validation, got %v", err)
	}
}

func TestExpirePending(t *testing.T) {
	f := newFixture(t)
	stale := f.book(t, salonBooking("cust-1", slot2pm, "cut"))

	f.clock.Advance(20 * time.Minute)
	fresh := f.book(t, salonBooking("cust-2", slot2pm.Add(time.Hour), "cut"))

	f.clock.Advance(15 * time.Minute)
	n, err := NewExpirePending(f.deps).Execute(ctxBg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}

	got, _ := f.store.GetByID(ctxBg, stale.ID)
	if got.Status != "cancelled" || got.CancelledBy != SystemActor || got.CancelReason != ExpireReason {
		t.Fatalf("stale not expired: %+v", got)
	}
	got, _ = f.store.GetByID(ctxBg, fresh.ID)
	if got.Status != "pending" {
		t.Fatalf("fresh appointment touched: %s", got.Status)
	}

	// second run is a no-op
	if n, _ := NewExpirePending(f.deps).Execute(ctxBg); n != 0 {
		t.Fatalf("second sweep expired %d", n)
	}
}
