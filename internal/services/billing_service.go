package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"careerkit/internal/models/db_models"
	"careerkit/internal/models/response_models"
	"careerkit/internal/repositories"
	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

// IBillingService covers the synchronous side of the payment provider:
// checkout, customer portal, cancellation and invoice history. The
// asynchronous side lives in the webhook reconciler.
type IBillingService interface {
	CreateCheckout(ctx context.Context, principal auth.Principal, planCode string) (*response_models.CreateCheckoutResponse, error)
	CreatePortalSession(ctx context.Context, principal auth.Principal) (string, error)
	CancelSubscription(ctx context.Context, principal auth.Principal) error
	ListInvoices(ctx context.Context, principal auth.Principal) ([]response_models.InvoiceSummary, error)
}

type BillingService struct {
	gateway  IStripeGateway
	quota    IQuotaService
	subRepo  repositories.ISubscriptionRepository
	planRepo repositories.IPlanRepository
	mail     IMailService
	priceIDs map[string]string // plan code -> stripe price id
	logger   *zap.Logger
}

func NewBillingService(
	gateway IStripeGateway,
	quota IQuotaService,
	subRepo repositories.ISubscriptionRepository,
	planRepo repositories.IPlanRepository,
	mail IMailService,
	priceIDs map[string]string,
	logger *zap.Logger,
) IBillingService {
	return &BillingService{
		gateway:  gateway,
		quota:    quota,
		subRepo:  subRepo,
		planRepo: planRepo,
		mail:     mail,
		priceIDs: priceIDs,
		logger:   logger,
	}
}

func (b *BillingService) CreateCheckout(ctx context.Context, principal auth.Principal, planCode string) (*response_models.CreateCheckoutResponse, error) {
	priceID, ok := b.priceIDs[planCode]
	if !ok || priceID == "" {
		return nil, fmt.Errorf("%w: no price configured for plan %q", utils.ErrNotConfigured, planCode)
	}

	plan, err := b.planRepo.GetPlanByCode(ctx, planCode)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.PriceMinor <= 0 {
		return nil, fmt.Errorf("%w: plan %q is not billable", utils.ErrPlanNotFound, planCode)
	}

	// Resolving through the quota engine guarantees the subscription row
	// exists before we attach a payment customer to it.
	sub, err := b.quota.ResolveSubscription(ctx, principal)
	if err != nil {
		return nil, err
	}

	customerID := ""
	if sub.StripeCustomerID != nil {
		customerID = *sub.StripeCustomerID
	}
	if customerID == "" {
		if customerID, err = b.gateway.CreateCustomer(ctx, principal.Email, principal.ID); err != nil {
			return nil, err
		}
		if err := b.subRepo.SetStripeCustomerID(ctx, sub.UserID, customerID); err != nil {
			return nil, err
		}
	}

	return b.gateway.CreateCheckoutSession(ctx, customerID, principal.ID, priceID)
}

func (b *BillingService) CreatePortalSession(ctx context.Context, principal auth.Principal) (string, error) {
	sub, err := b.quota.ResolveSubscription(ctx, principal)
	if err != nil {
		return "", err
	}
	if sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		return "", utils.ErrNoActivePaidSub
	}
	return b.gateway.CreatePortalSession(ctx, *sub.StripeCustomerID)
}

func (b *BillingService) CancelSubscription(ctx context.Context, principal auth.Principal) error {
	sub, err := b.quota.ResolveSubscription(ctx, principal)
	if err != nil {
		return err
	}
	if sub.Status != db_models.SubStatusActive || sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		return utils.ErrNoActivePaidSub
	}

	if err := b.gateway.CancelAtPeriodEnd(ctx, *sub.StripeSubscriptionID); err != nil {
		return err
	}

	// Local status flips immediately so the frontend reflects the pending
	// cancellation; the plan stays paid until the provider reports the
	// deletion at period end.
	if err := b.subRepo.SetStatus(ctx, sub.ID, db_models.SubStatusCanceling); err != nil {
		return err
	}

	// Best effort; a lost mail never fails the cancellation.
	if err := b.mail.SendCancellationNotice(principal.Email, principal.DisplayName(), sub.CurrentPeriodEnd); err != nil {
		b.logger.Warn("failed to send cancellation notice",
			zap.String("user_id", principal.ID),
			zap.Error(err))
	}

	return nil
}

func (b *BillingService) ListInvoices(ctx context.Context, principal auth.Principal) ([]response_models.InvoiceSummary, error) {
	sub, err := b.quota.ResolveSubscription(ctx, principal)
	if err != nil {
		return nil, err
	}
	if sub.StripeCustomerID == nil || *sub.StripeCustomerID == "" {
		return []response_models.InvoiceSummary{}, nil
	}
	return b.gateway.ListInvoices(ctx, *sub.StripeCustomerID, 0)
}
