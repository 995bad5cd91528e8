package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReaper struct {
	calls atomic.Int32
	err   error
}

func (c *countingReaper) Execute(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestNewIntentReaper_RejectsBadSchedule(t *testing.T) {
	_, err := NewIntentReaper(&countingReaper{}, "every now and then", zap.NewNop())
	assert.Error(t, err)
}

func TestIntentReaper_RunSwallowsErrors(t *testing.T) {
	rp := &countingReaper{err: errors.New("db down")}
	r, err := NewIntentReaper(rp, "@every 5m", zap.NewNop())
	require.NoError(t, err)

	r.Run()
	r.Run()
	assert.Equal(t, int32(2), rp.calls.Load())

	r.Start()
	r.Stop()
}
