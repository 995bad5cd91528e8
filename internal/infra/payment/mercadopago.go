package payment

import (
	"context"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/sacrament-scheduler/internal/httperr"
)

const statusApproved = "approved"

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentSearcher interface {
	Search(ctx context.Context, request payment.SearchRequest) (*payment.SearchResponse, error)
}

type Options struct {
	AccessToken     string
	NotificationURL string
	SuccessURL      string
	FailureURL      string
}

// MercadoPago opens Checkout Pro preferences and confirms them by looking up
// payments carrying our session id as external reference.
type MercadoPago struct {
	preferences preferenceCreator
	payments    paymentSearcher
	opts        Options
}

func NewMercadoPago(opts Options) (*MercadoPago, error) {
	cfg, err := config.New(opts.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		opts:        opts,
	}, nil
}

func (m *MercadoPago) CreateIntent(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentSession, error) {
	metadata := make(map[string]any, len(req.Metadata))
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	request := preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:        req.Reference,
				Title:     req.Description,
				Quantity:  1,
				UnitPrice: req.Amount,
			},
		},
		ExternalReference: req.Reference,
		Metadata:          metadata,
		NotificationURL:   m.opts.NotificationURL,
	}

	if m.opts.SuccessURL != "" || m.opts.FailureURL != "" {
		request.BackURLs = &preference.BackURLsRequest{
			Success: m.opts.SuccessURL,
			Failure: m.opts.FailureURL,
			Pending: m.opts.FailureURL,
		}
	}

	if !req.ExpiresAt.IsZero() {
		expires := req.ExpiresAt
		request.Expires = true
		request.ExpirationDateTo = &expires
	}

	res, err := m.preferences.Create(ctx, request)
	if err != nil {
		return nil, providerError(err)
	}

	return &domain.PaymentSession{
		SessionID:   req.Reference,
		ProviderRef: res.ID,
		CheckoutURL: res.InitPoint,
		ExpiresAt:   req.ExpiresAt,
	}, nil
}

func (m *MercadoPago) Verify(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	res, err := m.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{"external_reference": sessionID},
	})
	if err != nil {
		return nil, providerError(err)
	}

	out := &domain.PaymentVerification{Metadata: map[string]string{}}
	for _, p := range res.Results {
		if p.ExternalReference != sessionID || p.Status != statusApproved {
			continue
		}
		out.Paid = true
		out.Amount = p.TransactionAmount
		for k, v := range p.Metadata {
			out.Metadata[k] = fmt.Sprint(v)
		}
		break
	}
	return out, nil
}

func providerError(err error) error {
	return fmt.Errorf("%w: %v", httperr.ErrBusiness(domain.CodePaymentProvider), err)
}

// Disabled rejects paid bookings when no provider is configured.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, domain.PaymentRequest) (*domain.PaymentSession, error) {
	return nil, httperr.ErrBusiness(domain.CodePaymentsDisabled)
}

func (Disabled) Verify(context.Context, string) (*domain.PaymentVerification, error) {
	return nil, httperr.ErrBusiness(domain.CodePaymentsDisabled)
}

var (
	_ domain.PaymentSessionBridge = (*MercadoPago)(nil)
	_ domain.PaymentSessionBridge = Disabled{}
)
