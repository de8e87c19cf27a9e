package plan_fx

import (
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"careerkit/internal/repositories"
	"careerkit/pkg/memcache"
)

var Module = fx.Provide(
	providePlanCache,
	providePlanRepository,
)

func providePlanCache() *memcache.PlanCache {
	return memcache.NewPlanCache(5 * time.Minute)
}

func providePlanRepository(db *gorm.DB, cache *memcache.PlanCache) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db, cache)
}
