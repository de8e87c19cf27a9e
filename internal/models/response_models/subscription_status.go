package response_models

import "time"

type PlanSummary struct {
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	PriceMinor int64            `json:"price_minor"`
	Currency   string           `json:"currency"`
	Limits     map[string]int64 `json:"limits"`
}

type UsageSummary struct {
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Counts      map[string]int64 `json:"counts"`
}

// SubscriptionStatusResponse is the full picture the settings page renders:
// plan, lifecycle status, current window and how much of each quota is used.
type SubscriptionStatusResponse struct {
	Status             string       `json:"status"`
	Plan               PlanSummary  `json:"plan"`
	CurrentPeriodStart time.Time    `json:"current_period_start"`
	CurrentPeriodEnd   time.Time    `json:"current_period_end"`
	Usage              UsageSummary `json:"usage"`
}
