package services

import (
	"context"

	"careerkit/internal/models/db_models"
	"careerkit/internal/models/response_models"
	"careerkit/internal/repositories"
	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

// ISubscriptionService assembles the full billing picture for the frontend.
type ISubscriptionService interface {
	GetStatus(ctx context.Context, principal auth.Principal) (*response_models.SubscriptionStatusResponse, error)
}

type SubscriptionService struct {
	quota    IQuotaService
	planRepo repositories.IPlanRepository
}

func NewSubscriptionService(quota IQuotaService, planRepo repositories.IPlanRepository) ISubscriptionService {
	return &SubscriptionService{quota: quota, planRepo: planRepo}
}

// GetStatus resolves through the quota engine, so hitting the settings page
// provisions the free tier and rolls over an expired period exactly the way
// a gated request would.
func (s *SubscriptionService) GetStatus(ctx context.Context, principal auth.Principal) (*response_models.SubscriptionStatusResponse, error) {
	sub, err := s.quota.ResolveSubscription(ctx, principal)
	if err != nil {
		return nil, err
	}

	usage, err := s.quota.ResolveUsagePeriod(ctx, principal, sub)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}

	counts := map[string]int64{
		db_models.FeatureResume:      usage.ResumeCount,
		db_models.FeatureCoverLetter: usage.CoverLetterCount,
		db_models.FeatureLinkedin:    usage.LinkedinCount,
		db_models.FeatureJobMatch:    usage.JobMatchCount,
	}

	return &response_models.SubscriptionStatusResponse{
		Status: string(sub.Status),
		Plan: response_models.PlanSummary{
			Code:       plan.Code,
			Name:       plan.Name,
			PriceMinor: plan.PriceMinor,
			Currency:   plan.Currency,
			Limits:     plan.LimitsMap(),
		},
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		Usage: response_models.UsageSummary{
			PeriodStart: usage.PeriodStart,
			PeriodEnd:   usage.PeriodEnd,
			Counts:      counts,
		},
	}, nil
}
