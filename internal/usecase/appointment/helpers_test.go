package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/audit"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/notify"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

// Sunday 2026-03-01 08:00 UTC. The seeded schedule repeats on Sundays.
var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

const bookingDate = "2026-03-08"

type fakeBridge struct {
	mu        sync.Mutex
	requests  []domain.PaymentRequest
	paid      map[string]float64
	createErr error
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{paid: map[string]float64{}}
}

func (b *fakeBridge) CreateIntent(_ context.Context, req domain.PaymentRequest) (*domain.PaymentSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.requests = append(b.requests, req)
	return &domain.PaymentSession{
		SessionID:   req.Reference,
		ProviderRef: "pref-" + req.Reference,
		CheckoutURL: "https://pay.example/" + req.Reference,
	}, nil
}

func (b *fakeBridge) Verify(_ context.Context, sessionID string) (*domain.PaymentVerification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	amount, ok := b.paid[sessionID]
	return &domain.PaymentVerification{Paid: ok, Amount: amount}, nil
}

func (b *fakeBridge) markPaid(sessionID string, amount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paid[sessionID] = amount
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingEmitter) Dispatch(events ...notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recordingEmitter) count(t notify.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type harness struct {
	db      *gorm.DB
	repo    *repository.AppointmentGormRepository
	cat     testutil.Catalog
	clock   *clock.Fixed
	bridge  *fakeBridge
	events  *recordingEmitter
	audit   *audit.Dispatcher
	submit  *SubmitApplication
	confirm *ConfirmPayment
	status  *UpdateStatus
}

func newHarness(t *testing.T, opts testutil.CatalogOptions) *harness {
	t.Helper()
	return newHarnessOn(t, testutil.OpenDB(t), opts)
}

func newHarnessOn(t *testing.T, db *gorm.DB, opts testutil.CatalogOptions) *harness {
	t.Helper()

	h := &harness{
		db:     db,
		repo:   repository.NewAppointmentGormRepository(db),
		cat:    testutil.SeedCatalog(t, db, opts),
		clock:  clock.NewFixed(testNow),
		bridge: newFakeBridge(),
		events: &recordingEmitter{},
	}

	log := zap.NewNop()
	h.audit = audit.NewDispatcher(audit.New(db), log)
	t.Cleanup(h.audit.Close)

	h.submit = NewSubmitApplication(h.repo, h.bridge, h.events, h.clock, 30*time.Minute, log)
	h.confirm = NewConfirmPayment(h.repo, h.bridge, lock.NoopLocker{}, h.events, h.clock, 30*time.Second, log)
	h.status = NewUpdateStatus(h.repo, h.audit, h.events, h.clock, log)
	return h
}

func (h *harness) input() SubmitApplicationInput {
	return SubmitApplicationInput{
		ChurchID:       h.cat.Church.ID,
		ServiceID:      h.cat.Service.ID,
		ScheduleID:     h.cat.Schedule.ID,
		ScheduleTimeID: h.cat.ScheduleTime.ID,
		Date:           bookingDate,
	}
}

func (h *harness) remaining(t *testing.T) int {
	t.Helper()
	n, err := h.repo.CheckAvailable(context.Background(), h.cat.ScheduleTime.ID, bookingDate)
	if err != nil {
		t.Fatalf("check available: %v", err)
	}
	return n
}

func applicant(id uint) domain.Actor {
	return domain.Actor{UserID: id, Role: domain.RoleApplicant}
}

func staffOf(churchID uint) domain.Actor {
	return domain.Actor{UserID: 900, ChurchID: &churchID, Role: domain.RoleStaff}
}
