package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"careerkit/internal/models/db_models"
	"careerkit/internal/repositories"
	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

// GatedOperation is the deferred feature body. It runs only after the quota
// pre-check passes and reports its outcome as (response, HTTP status).
type GatedOperation func() (interface{}, int)

// IQuotaService decides whether a principal may consume a metered feature
// this billing period, runs the gated body, and commits the consumption
// afterwards. All coordination happens through keyed writes on the billing
// store, so the engine is correct across concurrent replicas.
type IQuotaService interface {
	AuthorizeAndGate(ctx context.Context, principal auth.Principal, feature string, increment int64, op GatedOperation) (interface{}, int, error)

	// ResolveSubscription returns the authoritative subscription for the
	// principal, lazily provisioning the free tier and rolling over an
	// expired billing period. Shared with the status endpoint.
	ResolveSubscription(ctx context.Context, principal auth.Principal) (*db_models.Subscription, error)

	// ResolveUsagePeriod returns the usage row for the subscription's
	// current period, creating it when absent.
	ResolveUsagePeriod(ctx context.Context, principal auth.Principal, sub *db_models.Subscription) (*db_models.UsagePeriod, error)
}

type QuotaService struct {
	subRepo   repositories.ISubscriptionRepository
	usageRepo repositories.IUsageRepository
	planRepo  repositories.IPlanRepository
	logger    *zap.Logger
}

func NewQuotaService(
	subRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	planRepo repositories.IPlanRepository,
	logger *zap.Logger,
) IQuotaService {
	return &QuotaService{
		subRepo:   subRepo,
		usageRepo: usageRepo,
		planRepo:  planRepo,
		logger:    logger,
	}
}

func (q *QuotaService) AuthorizeAndGate(ctx context.Context, principal auth.Principal, feature string, increment int64, op GatedOperation) (interface{}, int, error) {
	if increment <= 0 {
		increment = 1
	}

	// Steps 1-4 fail closed: any store failure here aborts the request
	// before the gated body runs, so consumption is never unmetered.
	sub, err := q.ResolveSubscription(ctx, principal)
	if err != nil {
		return nil, 0, err
	}

	usage, err := q.ResolveUsagePeriod(ctx, principal, sub)
	if err != nil {
		return nil, 0, err
	}

	plan, err := q.planRepo.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, 0, err
	}
	if plan == nil {
		return nil, 0, utils.ErrPlanNotFound
	}

	limit := plan.LimitFor(feature)
	current := usage.CountFor(feature)
	if current+increment > limit {
		return nil, http.StatusTooManyRequests, &utils.QuotaExceededError{
			Feature: feature,
			Limit:   limit,
			Usage:   current,
		}
	}

	// Step 6: the body runs exactly once, after the check.
	response, statusCode := op()

	// Step 7: commit only when the body succeeded. A failed increment is
	// logged and absorbed; the user already has their result, and the rare
	// under-count is preferred over failing a request that succeeded.
	if statusCode >= 200 && statusCode < 300 {
		if err := q.usageRepo.IncrementCounter(ctx, usage.ID, feature, increment); err != nil {
			q.logger.Error("failed to commit usage after successful gated operation",
				zap.String("user_id", principal.ID),
				zap.String("feature", feature),
				zap.Error(err))
		}
	}

	return response, statusCode, nil
}

func (q *QuotaService) ResolveSubscription(ctx context.Context, principal auth.Principal) (*db_models.Subscription, error) {
	userID, err := uuid.Parse(principal.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: principal id is not a uuid", utils.ErrProvisioning)
	}

	sub, err := q.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub == nil {
		if sub, err = q.provisionDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	today := utils.DateOnly(time.Now())
	if sub.PeriodExpired(today) {
		nextStart, nextEnd := utils.NextPeriod(sub.CurrentPeriodEnd)
		q.logger.Info("billing period expired, rolling over",
			zap.String("user_id", userID.String()),
			zap.Time("expired_end", sub.CurrentPeriodEnd),
			zap.Time("next_start", nextStart))

		if err := q.subRepo.UpdatePeriod(ctx, sub.ID, nextStart, nextEnd); err != nil {
			return nil, err
		}
		// Re-fetch so the engine always operates on the authoritative
		// period. A concurrent rollover is harmless: both writers compute
		// the same next period from the same expired input.
		if sub, err = q.subRepo.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, utils.ErrProvisioning
		}
	}

	return sub, nil
}

// provisionDefault creates the free-tier subscription covering the current
// calendar month. The upsert is keyed on user_id, so concurrent first
// requests cannot produce duplicate rows; the re-fetch picks up whichever
// writer won.
func (q *QuotaService) provisionDefault(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	freePlan, err := q.planRepo.GetPlanByCode(ctx, db_models.PlanCodeFree)
	if err != nil {
		return nil, err
	}
	if freePlan == nil {
		return nil, utils.ErrPlanNotFound
	}

	start, end := utils.CurrentMonthPeriod(time.Now())
	q.logger.Info("no subscription record, provisioning default free plan",
		zap.String("user_id", userID.String()))

	if err := q.subRepo.CreateIfAbsent(ctx, &db_models.Subscription{
		UserID:             userID,
		PlanID:             freePlan.ID,
		Status:             db_models.SubStatusFree,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}); err != nil {
		return nil, err
	}

	sub, err := q.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, utils.ErrProvisioning
	}
	return sub, nil
}

func (q *QuotaService) ResolveUsagePeriod(ctx context.Context, principal auth.Principal, sub *db_models.Subscription) (*db_models.UsagePeriod, error) {
	usage, err := q.usageRepo.GetForPeriod(ctx, sub.UserID, sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return nil, err
	}
	if usage != nil {
		return usage, nil
	}

	if err := q.usageRepo.CreateIfAbsent(ctx, &db_models.UsagePeriod{
		UserID:      sub.UserID,
		PlanID:      sub.PlanID,
		PeriodStart: sub.CurrentPeriodStart,
		PeriodEnd:   sub.CurrentPeriodEnd,
		DisplayName: principal.DisplayName(),
	}); err != nil {
		return nil, err
	}

	if usage, err = q.usageRepo.GetForPeriod(ctx, sub.UserID, sub.CurrentPeriodStart, sub.CurrentPeriodEnd); err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, utils.ErrProvisioning
	}
	return usage, nil
}
