package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
)

// ReapExpiredIntents closes checkouts that outlived their expiry. Intents
// never hold a slot, so the ledger is not touched.
type ReapExpiredIntents struct {
	repo  domain.Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewReapExpiredIntents(repo domain.Repository, clk clock.Clock, log *zap.Logger) *ReapExpiredIntents {
	return &ReapExpiredIntents{repo: repo, clock: clk, log: log}
}

func (uc *ReapExpiredIntents) Execute(ctx context.Context) (int64, error) {
	n, err := uc.repo.ExpireStaleIntents(ctx, uc.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info("expired stale payment intents", zap.Int64("count", n))
	}
	return n, nil
}
