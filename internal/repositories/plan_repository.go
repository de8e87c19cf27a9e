package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careerkit/internal/models/db_models"
	"careerkit/pkg/memcache"
)

type IPlanRepository interface {
	GetPlanByID(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error)
	GetPlanByCode(ctx context.Context, code string) (*db_models.Plan, error)
	GetAllPlans(ctx context.Context) ([]db_models.Plan, error)
}

// PlanRepository fronts the immutable plan catalog with a small TTL cache;
// every gated request resolves a plan, and the catalog changes only on
// administrative reseeding.
type PlanRepository struct {
	db    *gorm.DB
	cache *memcache.PlanCache
}

func NewPlanRepository(db *gorm.DB, cache *memcache.PlanCache) IPlanRepository {
	return &PlanRepository{db: db, cache: cache}
}

func (p *PlanRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	key := "id:" + planID.String()
	if v, ok := p.cache.Get(key); ok {
		plan := v.(db_models.Plan)
		return &plan, nil
	}

	var plan db_models.Plan
	err := p.db.WithContext(ctx).First(&plan, "id = ?", planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}

	p.cache.Set(key, plan)
	return &plan, nil
}

func (p *PlanRepository) GetPlanByCode(ctx context.Context, code string) (*db_models.Plan, error) {
	key := "code:" + code
	if v, ok := p.cache.Get(key); ok {
		plan := v.(db_models.Plan)
		return &plan, nil
	}

	var plan db_models.Plan
	err := p.db.WithContext(ctx).
		First(&plan, "code = ? AND is_active = TRUE", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}

	p.cache.Set(key, plan)
	return &plan, nil
}

func (p *PlanRepository) GetAllPlans(ctx context.Context) ([]db_models.Plan, error) {
	var plans []db_models.Plan
	err := p.db.WithContext(ctx).Where("is_active = TRUE").Find(&plans).Error
	if err != nil {
		return nil, classify(err)
	}
	return plans, nil
}
