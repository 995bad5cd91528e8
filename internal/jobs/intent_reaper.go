package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Reaper interface {
	Execute(ctx context.Context) (int64, error)
}

const runTimeout = time.Minute

// IntentReaper periodically expires abandoned checkouts.
type IntentReaper struct {
	cron   *cron.Cron
	reaper Reaper
	log    *zap.Logger
}

func NewIntentReaper(reaper Reaper, schedule string, log *zap.Logger) (*IntentReaper, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	r := &IntentReaper{cron: c, reaper: reaper, log: log}

	if _, err := c.AddFunc(schedule, r.Run); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *IntentReaper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := r.reaper.Execute(ctx); err != nil {
		r.log.Error("intent reaper run failed", zap.Error(err))
	}
}

func (r *IntentReaper) Start() { r.cron.Start() }

// Stop waits for a running job to finish.
func (r *IntentReaper) Stop() {
	<-r.cron.Stop().Done()
}
