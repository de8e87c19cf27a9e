package quota_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerkit/internal/repositories"
	"careerkit/internal/services"
)

var Module = fx.Provide(
	provideSubscriptionRepository,
	provideUsageRepository,
	provideQuotaService,
	provideSubscriptionService,
)

func provideSubscriptionRepository(db *gorm.DB) repositories.ISubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideUsageRepository(db *gorm.DB) repositories.IUsageRepository {
	return repositories.NewUsageRepository(db)
}

func provideQuotaService(
	subRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	planRepo repositories.IPlanRepository,
	logger *zap.Logger,
) services.IQuotaService {
	return services.NewQuotaService(subRepo, usageRepo, planRepo, logger)
}

func provideSubscriptionService(
	quota services.IQuotaService,
	planRepo repositories.IPlanRepository,
) services.ISubscriptionService {
	return services.NewSubscriptionService(quota, planRepo)
}
