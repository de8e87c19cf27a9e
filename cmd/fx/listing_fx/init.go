package listing_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careerkit/internal/repositories"
	"careerkit/internal/services"
	"careerkit/pkg/utils"
)

var Module = fx.Provide(
	provideListingRepository,
	provideListingService,
)

func provideListingRepository(db *gorm.DB) repositories.IListingRepository {
	return repositories.NewListingRepository(db)
}

func provideListingService(
	repo repositories.IListingRepository,
	embedding utils.EmbeddingClient,
	logger *zap.Logger,
) services.IListingService {
	return services.NewListingService(repo, embedding, logger)
}
