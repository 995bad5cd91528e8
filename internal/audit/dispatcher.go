package audit

import "go.uber.org/zap"

type Event struct {
	ChurchID uint
	UserID   *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event
	done   chan struct{}
}

func NewDispatcher(logger *Logger, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.logger.Log(
			ev.ChurchID,
			ev.UserID,
			ev.Action,
			ev.Entity,
			ev.EntityID,
			ev.Metadata,
		); err != nil {
			d.log.Error("audit write failed", zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

// Dispatch drops the event when the queue is full. Auditing never fails a
// request.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
