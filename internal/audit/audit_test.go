package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/testutil"
)

func TestDispatcher_PersistsEvents(t *testing.T) {
	db := testutil.OpenDB(t)
	logger := New(db)
	d := NewDispatcher(logger, zap.NewNop())

	uid := uint(7)
	id := uint(3)
	d.Dispatch(Event{ChurchID: 1, UserID: &uid, Action: "appointment_status_changed", Entity: "appointment", EntityID: &id, Metadata: map[string]string{"from": "Pending", "to": "Approved"}})
	d.Dispatch(Event{ChurchID: 2, Action: "appointment_status_changed", Entity: "appointment"})
	d.Close()

	church := uint(1)
	rows, total, err := logger.List(context.Background(), ListFilter{ChurchID: &church})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"from":"Pending","to":"Approved"}`, rows[0].Metadata)

	_, all, err := logger.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)
}
