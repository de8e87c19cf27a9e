package billing_fx

import (
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"careerkit/internal/models/db_models"
	"careerkit/internal/repositories"
	"careerkit/internal/services"
)

var Module = fx.Provide(
	provideStripeGateway,
	provideBillingService,
	provideWebhookService,
)

func provideStripeGateway(logger *zap.Logger) services.IStripeGateway {
	cfg := services.StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ProPriceID:    os.Getenv("STRIPE_PRO_PRICE_ID"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		Timeout:       10 * time.Second,
	}

	gateway, err := services.NewStripeGateway(cfg)
	if err != nil {
		logger.Fatal("failed to initialize stripe gateway", zap.Error(err))
	}
	return gateway
}

func provideBillingService(
	gateway services.IStripeGateway,
	quota services.IQuotaService,
	subRepo repositories.ISubscriptionRepository,
	planRepo repositories.IPlanRepository,
	mail services.IMailService,
	logger *zap.Logger,
) services.IBillingService {
	priceIDs := map[string]string{
		db_models.PlanCodePro: os.Getenv("STRIPE_PRO_PRICE_ID"),
	}
	return services.NewBillingService(gateway, quota, subRepo, planRepo, mail, priceIDs, logger)
}

func provideWebhookService(
	gateway services.IStripeGateway,
	subRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	planRepo repositories.IPlanRepository,
	logger *zap.Logger,
) services.IWebhookService {
	return services.NewWebhookService(gateway, subRepo, usageRepo, planRepo, logger)
}
