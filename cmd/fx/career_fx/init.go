package career_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"careerkit/internal/services"
	"careerkit/pkg/utils"
)

var Module = fx.Provide(provideCareerService)

func provideCareerService(client utils.GenerationClient, logger *zap.Logger) services.ICareerService {
	return services.NewCareerService(client, logger)
}
