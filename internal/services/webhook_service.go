package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"careerkit/internal/models/db_models"
	"careerkit/internal/repositories"
	"careerkit/pkg/utils"
)

// IWebhookService reconciles the billing ledger against the payment
// provider's asynchronous event stream. Events arrive at least once and in
// no particular order; every handler is written as a keyed, idempotent
// update so replays and reorderings converge to the same terminal state.
type IWebhookService interface {
	HandleWebhook(c *gin.Context)

	// Apply dispatches one verified event. Exposed separately from the HTTP
	// handler so reconciliation is testable without signatures.
	Apply(ctx context.Context, event *WebhookEvent) error
}

type WebhookService struct {
	gateway   IStripeGateway
	subRepo   repositories.ISubscriptionRepository
	usageRepo repositories.IUsageRepository
	planRepo  repositories.IPlanRepository
	logger    *zap.Logger
}

func NewWebhookService(
	gateway IStripeGateway,
	subRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	planRepo repositories.IPlanRepository,
	logger *zap.Logger,
) IWebhookService {
	return &WebhookService{
		gateway:   gateway,
		subRepo:   subRepo,
		usageRepo: usageRepo,
		planRepo:  planRepo,
		logger:    logger,
	}
}

// Webhook payloads are decoded into these minimal local shapes rather than
// provider SDK structs; reconciliation only ever needs the keys below, and
// expandable fields arrive as plain string ids.
type checkoutSessionPayload struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	ClientReferenceID string `json:"client_reference_id"`
}

type invoicePayload struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	PeriodStart  int64  `json:"period_start"`
	PeriodEnd    int64  `json:"period_end"`
}

type subscriptionPayload struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

func (w *WebhookService) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := w.gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		// Security-relevant: somebody posted an event we cannot attribute
		// to the provider.
		w.logger.Warn("rejected webhook with invalid signature", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, "Invalid signature or payload")
		return
	}

	// Internal faults are logged and the event is still acknowledged;
	// a non-2xx here would make the provider retry a permanently-failing
	// event forever.
	if err := w.Apply(c.Request.Context(), event); err != nil {
		w.logger.Error("webhook event processing failed",
			zap.String("event_type", event.Type),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (w *WebhookService) Apply(ctx context.Context, event *WebhookEvent) error {
	w.logger.Info("processing payment provider event", zap.String("event_type", event.Type))

	var err error
	switch event.Type {
	case "checkout.session.completed":
		err = w.handleCheckoutCompleted(ctx, event.Raw)
	case "invoice.paid", "invoice.payment_succeeded":
		err = w.handleInvoicePaid(ctx, event.Raw)
	case "invoice.payment_failed":
		err = w.handleInvoicePaymentFailed(ctx, event.Raw)
	case "customer.subscription.deleted":
		err = w.handleSubscriptionDeleted(ctx, event.Raw)
	default:
		w.logger.Debug("ignoring unhandled event type", zap.String("event_type", event.Type))
		return nil
	}

	if err != nil {
		return &utils.WebhookProcessingError{EventType: event.Type, Err: err}
	}
	return nil
}

// handleCheckoutCompleted provisions the paid tier for the user named by
// client_reference_id. Keyed by user id: re-delivery with the same refs
// rewrites the row to the same values.
func (w *WebhookService) handleCheckoutCompleted(ctx context.Context, raw json.RawMessage) error {
	var session checkoutSessionPayload
	if err := json.Unmarshal(raw, &session); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}
	if session.ClientReferenceID == "" {
		// Nothing to key the upgrade on; ack and flag for investigation.
		w.logger.Error("checkout.session.completed without client_reference_id",
			zap.String("session_id", session.ID))
		return nil
	}
	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("client_reference_id %q is not a user id", session.ClientReferenceID)
	}

	paidPlan, err := w.planRepo.GetPlanByCode(ctx, db_models.PlanCodePro)
	if err != nil {
		return err
	}
	if paidPlan == nil {
		return utils.ErrPlanNotFound
	}

	// The provider's own period math is authoritative; the local calendar
	// month is only the fallback when the subscription cannot be fetched.
	start, end := utils.CurrentMonthPeriod(time.Now())
	if period, err := w.gateway.GetSubscriptionPeriod(ctx, session.Subscription); err != nil {
		w.logger.Error("failed to retrieve subscription period from provider, falling back to calendar month",
			zap.String("stripe_subscription_id", session.Subscription),
			zap.Error(err))
	} else {
		start, end = utils.DateOnly(period.Start), utils.DateOnly(period.End)
	}

	// The subscription row may not exist yet if checkout completed before
	// the user's first gated request.
	freePlan, err := w.planRepo.GetPlanByCode(ctx, db_models.PlanCodeFree)
	if err != nil {
		return err
	}
	if freePlan == nil {
		return utils.ErrPlanNotFound
	}
	if err := w.subRepo.CreateIfAbsent(ctx, &db_models.Subscription{
		UserID:             userID,
		PlanID:             freePlan.ID,
		Status:             db_models.SubStatusFree,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}); err != nil {
		return err
	}

	if err := w.subRepo.ApplyCheckout(ctx, userID, paidPlan.ID, session.Customer, session.Subscription, start, end); err != nil {
		return err
	}

	return w.usageRepo.CreateIfAbsent(ctx, &db_models.UsagePeriod{
		UserID:      userID,
		PlanID:      paidPlan.ID,
		PeriodStart: start,
		PeriodEnd:   end,
	})
}

// handleInvoicePaid advances the billing window to the period the provider
// reports on the invoice. Keyed by (customer ref, period): a duplicate
// delivery for an already-applied period is a no-op.
func (w *WebhookService) handleInvoicePaid(ctx context.Context, raw json.RawMessage) error {
	var inv invoicePayload
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if inv.Customer == "" {
		return nil
	}

	sub, err := w.subRepo.GetByStripeCustomerID(ctx, inv.Customer)
	if err != nil {
		return err
	}
	if sub == nil {
		w.logger.Warn("invoice for unknown customer ref",
			zap.String("stripe_customer_id", inv.Customer))
		return nil
	}

	newStart := utils.DateOnly(time.Unix(inv.PeriodStart, 0).UTC())
	newEnd := utils.DateOnly(time.Unix(inv.PeriodEnd, 0).UTC())

	if sub.CurrentPeriodStart.Equal(newStart) && sub.CurrentPeriodEnd.Equal(newEnd) &&
		sub.Status == db_models.SubStatusActive {
		return nil
	}

	stripeSubID := inv.Subscription
	if stripeSubID == "" && sub.StripeSubscriptionID != nil {
		stripeSubID = *sub.StripeSubscriptionID
	}

	if err := w.subRepo.ApplyRenewal(ctx, sub.ID, stripeSubID, newStart, newEnd); err != nil {
		return err
	}

	return w.usageRepo.CreateIfAbsent(ctx, &db_models.UsagePeriod{
		UserID:      sub.UserID,
		PlanID:      sub.PlanID,
		PeriodStart: newStart,
		PeriodEnd:   newEnd,
	})
}

func (w *WebhookService) handleInvoicePaymentFailed(ctx context.Context, raw json.RawMessage) error {
	var inv invoicePayload
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if inv.Subscription == "" {
		return nil
	}
	// Setting the same status twice is harmless.
	return w.subRepo.SetStatusByStripeSubscriptionID(ctx, inv.Subscription, db_models.SubStatusPastDue)
}

// handleSubscriptionDeleted downgrades the user in place: free plan, refs
// cleared, period reset to the current calendar month. Re-applying to an
// already-free subscription converges; an unknown customer ref is a safe
// no-op.
func (w *WebhookService) handleSubscriptionDeleted(ctx context.Context, raw json.RawMessage) error {
	var payload subscriptionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := w.subRepo.GetByStripeCustomerID(ctx, payload.Customer)
	if err != nil {
		return err
	}
	if sub == nil {
		w.logger.Info("subscription deleted for unknown customer ref, ignoring",
			zap.String("stripe_customer_id", payload.Customer))
		return nil
	}

	freePlan, err := w.planRepo.GetPlanByCode(ctx, db_models.PlanCodeFree)
	if err != nil {
		return err
	}
	if freePlan == nil {
		return utils.ErrPlanNotFound
	}

	start, end := utils.CurrentMonthPeriod(time.Now())
	if err := w.subRepo.Downgrade(ctx, sub.ID, freePlan.ID, start, end); err != nil {
		return err
	}

	return w.usageRepo.CreateIfAbsent(ctx, &db_models.UsagePeriod{
		UserID:      sub.UserID,
		PlanID:      freePlan.ID,
		PeriodStart: start,
		PeriodEnd:   end,
	})
}
