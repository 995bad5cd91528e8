package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
)

type fakePreferences struct {
	got preference.Request
	err error
}

func (f *fakePreferences) Create(_ context.Context, r preference.Request) (*preference.Response, error) {
	f.got = r
	if f.err != nil {
		return nil, f.err
	}
	return &preference.Response{ID: "pref-1", InitPoint: "https://checkout.example/pref-1"}, nil
}

type fakePayments struct {
	results []payment.Response
	filters map[string]string
}

func (f *fakePayments) Search(_ context.Context, r payment.SearchRequest) (*payment.SearchResponse, error) {
	f.filters = r.Filters
	return &payment.SearchResponse{Results: f.results}, nil
}

func TestMercadoPago_CreateIntent(t *testing.T) {
	prefs := &fakePreferences{}
	mp := &MercadoPago{preferences: prefs, opts: Options{NotificationURL: "https://api.example/webhook"}}
	expires := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	sess, err := mp.CreateIntent(context.Background(), domain.PaymentRequest{
		Reference:   "sess-1",
		Amount:      450,
		Description: "Baptism",
		Metadata:    map[string]string{"church_id": "1"},
		ExpiresAt:   expires,
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", sess.SessionID)
	assert.Equal(t, "pref-1", sess.ProviderRef)
	assert.Equal(t, "https://checkout.example/pref-1", sess.CheckoutURL)

	assert.Equal(t, "sess-1", prefs.got.ExternalReference)
	require.Len(t, prefs.got.Items, 1)
	assert.Equal(t, 450.0, prefs.got.Items[0].UnitPrice)
	assert.True(t, prefs.got.Expires)
	assert.Equal(t, "1", prefs.got.Metadata["church_id"])
}

func TestMercadoPago_CreateIntentProviderFailure(t *testing.T) {
	mp := &MercadoPago{preferences: &fakePreferences{err: errors.New("timeout")}}

	_, err := mp.CreateIntent(context.Background(), domain.PaymentRequest{Reference: "s", Amount: 1})
	assert.True(t, httperr.IsBusiness(err, domain.CodePaymentProvider))
}

func TestMercadoPago_Verify(t *testing.T) {
	pays := &fakePayments{results: []payment.Response{
		{ID: 1, Status: "rejected", ExternalReference: "sess-1", TransactionAmount: 450},
		{ID: 2, Status: "approved", ExternalReference: "sess-1", TransactionAmount: 450, Metadata: map[string]any{"church_id": "1"}},
	}}
	mp := &MercadoPago{payments: pays}

	v, err := mp.Verify(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", pays.filters["external_reference"])
	assert.True(t, v.Paid)
	assert.Equal(t, 450.0, v.Amount)
	assert.Equal(t, "1", v.Metadata["church_id"])
}

func TestMercadoPago_VerifyUnpaid(t *testing.T) {
	mp := &MercadoPago{payments: &fakePayments{results: []payment.Response{
		{ID: 1, Status: "pending", ExternalReference: "sess-1"},
	}}}

	v, err := mp.Verify(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, v.Paid)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.CreateIntent(context.Background(), domain.PaymentRequest{})
	assert.True(t, httperr.IsBusiness(err, domain.CodePaymentsDisabled))
}
