package db_models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Plan codes seeded by migration; request traffic never mutates the catalog.
const (
	PlanCodeFree = "free"
	PlanCodePro  = "pro"
)

type Plan struct {
	BaseModel
	Code        string `gorm:"uniqueIndex"` // "free", "pro"
	Name        string
	Description *string
	PriceMinor  int64  // 999 = $9.99
	Currency    string `gorm:"size:3"` // ISO 4217
	IsActive    bool   `gorm:"default:true"`

	// Per-feature monthly quotas, feature name -> integer limit.
	// 0 or absent means the plan is not entitled to the feature.
	Limits datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}

// LimitFor reads the monthly quota for a feature out of the jsonb limits.
func (p *Plan) LimitFor(feature string) int64 {
	return p.LimitsMap()[feature]
}

// LimitsMap decodes the jsonb limits column. Undecodable limits read as an
// empty map, which denies everything rather than granting anything.
func (p *Plan) LimitsMap() map[string]int64 {
	limits := map[string]int64{}
	if len(p.Limits) == 0 {
		return limits
	}
	if err := json.Unmarshal(p.Limits, &limits); err != nil {
		return map[string]int64{}
	}
	return limits
}
