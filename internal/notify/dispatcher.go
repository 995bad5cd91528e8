package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// Sink delivers one event to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

const sendTimeout = 5 * time.Second

type Dispatcher struct {
	sinks []Sink
	log   *zap.Logger
	queue chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(log *zap.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 100
	}

	d := &Dispatcher{
		sinks: sinks,
		log:   log,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := sink.Send(ctx, ev); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("sink", sink.Name()),
					zap.String("event", string(ev.Type)),
					zap.Uint("appointment_id", ev.AppointmentID),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

// Dispatch never blocks: a full queue drops the event.
func (d *Dispatcher) Dispatch(events ...Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	for _, ev := range events {
		select {
		case d.queue <- ev:
		default:
			d.log.Warn("notification queue full, dropping event",
				zap.String("event", string(ev.Type)),
				zap.Uint("appointment_id", ev.AppointmentID),
			)
		}
	}
}

func (d *Dispatcher) NotifyAppointmentCreated(_ context.Context, ap *models.Appointment, churchID uint) {
	d.Dispatch(AppointmentCreated(ap, churchID, time.Now().UTC()))
}

func (d *Dispatcher) NotifyStatusChanged(_ context.Context, ap *models.Appointment, oldStatus, newStatus string) {
	d.Dispatch(StatusChanged(ap, oldStatus, newStatus, time.Now().UTC()))
}

// Close stops accepting events and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}

var _ Emitter = (*Dispatcher)(nil)
