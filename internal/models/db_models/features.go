package db_models

// Metered feature names. Plan limits and usage counters are keyed by these;
// anything else is not entitled under any plan.
const (
	FeatureResume      = "resume"
	FeatureCoverLetter = "cover_letter"
	FeatureLinkedin    = "linkedin"
	FeatureJobMatch    = "job_match"
)

// counterColumns maps a feature to its usage_periods column. Serving double
// duty as the whitelist for targeted increment updates.
var counterColumns = map[string]string{
	FeatureResume:      "resume_count",
	FeatureCoverLetter: "cover_letter_count",
	FeatureLinkedin:    "linkedin_count",
	FeatureJobMatch:    "job_match_count",
}

// CounterColumn returns the usage column for a feature, false for unknown
// features.
func CounterColumn(feature string) (string, bool) {
	col, ok := counterColumns[feature]
	return col, ok
}
