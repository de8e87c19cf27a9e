package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"careerkit/internal/models/response_models"
	"careerkit/pkg/utils"
)

// WebhookEvent is the provider-agnostic envelope the reconciler consumes:
// the verified event type plus the raw object payload.
type WebhookEvent struct {
	Type string
	Raw  json.RawMessage
}

// ProviderPeriod is a billing window as reported by the payment provider.
// The provider's period math is authoritative for paid subscriptions; local
// calendar math is only a fallback.
type ProviderPeriod struct {
	Start time.Time
	End   time.Time
}

// IStripeGateway is the synchronous boundary to the payment provider. The
// reconciler and billing service depend on this interface so tests can run
// without Stripe.
type IStripeGateway interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, userID, priceID string) (*response_models.CreateCheckoutResponse, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
	GetSubscriptionPeriod(ctx context.Context, subscriptionID string) (*ProviderPeriod, error)
	ListInvoices(ctx context.Context, customerID string, limit int) ([]response_models.InvoiceSummary, error)

	// VerifyWebhook checks the event signature against the shared signing
	// secret before anything inspects the payload.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ProPriceID    string
	FrontendURL   string
	Timeout       time.Duration
}

type stripeGateway struct {
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) (IStripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("missing stripe secret key")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	stripe.Key = cfg.SecretKey
	return &stripeGateway{cfg: cfg}, nil
}

func (g *stripeGateway) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.cfg.Timeout)
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"user_id": userID},
	}
	params.Context = ctx
	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, customerID, userID, priceID string) (*response_models.CreateCheckoutResponse, error) {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(g.cfg.FrontendURL + "/dashboard/settings?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.cfg.FrontendURL + "/billing/cancel"),
	}
	params.Context = ctx
	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &response_models.CreateCheckoutResponse{
		SessionID:   s.ID,
		CheckoutURL: s.URL,
	}, nil
}

func (g *stripeGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.cfg.FrontendURL + "/dashboard/settings"),
	}
	params.Context = ctx
	s, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create portal session: %w", err)
	}
	return s.URL, nil
}

func (g *stripeGateway) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	if _, err := subscription.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("stripe cancel subscription: %w", err)
	}
	return nil
}

func (g *stripeGateway) GetSubscriptionPeriod(ctx context.Context, subscriptionID string) (*ProviderPeriod, error) {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve subscription: %w", err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("stripe subscription %s has no items", subscriptionID)
	}
	item := sub.Items.Data[0]
	return &ProviderPeriod{
		Start: time.Unix(item.CurrentPeriodStart, 0).UTC(),
		End:   time.Unix(item.CurrentPeriodEnd, 0).UTC(),
	}, nil
}

func (g *stripeGateway) ListInvoices(ctx context.Context, customerID string, limit int) ([]response_models.InvoiceSummary, error) {
	ctx, cancel := g.bounded(ctx)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 12
	}
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	var out []response_models.InvoiceSummary
	it := invoice.List(params)
	for it.Next() {
		inv := it.Invoice()
		out = append(out, response_models.InvoiceSummary{
			ID:          inv.ID,
			AmountMinor: inv.AmountPaid,
			Currency:    string(inv.Currency),
			Status:      string(inv.Status),
			CreatedAt:   inv.Created,
			HostedURL:   inv.HostedInvoiceURL,
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe list invoices: %w", err)
	}
	return out, nil
}

func (g *stripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrWebhookSignature, err)
	}
	return &WebhookEvent{
		Type: string(event.Type),
		Raw:  event.Data.Raw,
	}, nil
}
