package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func TestDispatcher_DeliversToEverySinkDespiteFailures(t *testing.T) {
	failing := &recordingSink{err: errors.New("broker down")}
	ok := &recordingSink{}
	d := NewDispatcher(zap.NewNop(), 10, failing, ok)

	ap := &models.Appointment{ID: 4, UserID: 9, ChurchID: 2, SlotDate: "2026-03-08", Status: "Pending"}
	d.NotifyAppointmentCreated(context.Background(), ap, 2)
	d.NotifyStatusChanged(context.Background(), ap, "Pending", "Approved")
	d.Close()

	require.Len(t, ok.events, 2)
	assert.Len(t, failing.events, 2)
	assert.Equal(t, EventAppointmentCreated, ok.events[0].Type)
	assert.Equal(t, "Approved", ok.events[1].NewStatus)

	// Dispatch after close is ignored.
	d.Dispatch(Event{Type: EventStatusChanged})
	assert.Len(t, ok.events, 2)
}

func TestStoreSink_WritesApplicantAndChurchNotifications(t *testing.T) {
	db := testutil.OpenDB(t)
	sink := NewStoreSink(db)
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	ap := &models.Appointment{ID: 4, UserID: 9, ChurchID: 2, SlotDate: "2026-03-08", Status: "Pending"}
	require.NoError(t, sink.Send(context.Background(), AppointmentCreated(ap, 2, at)))
	require.NoError(t, sink.Send(context.Background(), StatusChanged(ap, "Pending", "Approved", at)))

	var rows []models.Notification
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.NotNil(t, rows[0].UserID)
	assert.Nil(t, rows[1].UserID, "church feed entry")
	assert.Equal(t, "Appointment Approved", rows[2].Title)
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPSink_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	sink := &AMQPSink{ch: ch, exchange: "sacraments.events"}

	ev := Event{Type: EventStatusChanged, AppointmentID: 3, NewStatus: "Cancelled"}
	require.NoError(t, sink.Send(context.Background(), ev))

	assert.Equal(t, "sacraments.events", ch.exchange)
	assert.Equal(t, "appointment.status_changed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, uint(3), got.AppointmentID)
}
