package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"careerkit/internal/models/db_models"
	"careerkit/internal/services"
	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

// ---------- in-memory fakes ----------

type fakeSubRepo struct {
	rows    map[uuid.UUID]*db_models.Subscription // keyed by user id
	getErr  error
	creates int
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{rows: map[uuid.UUID]*db_models.Subscription{}}
}

func (f *fakeSubRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if sub, ok := f.rows[userID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSubRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*db_models.Subscription, error) {
	for _, sub := range f.rows {
		if sub.StripeCustomerID != nil && *sub.StripeCustomerID == customerID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSubRepo) GetByStripeSubscriptionID(_ context.Context, subID string) (*db_models.Subscription, error) {
	for _, sub := range f.rows {
		if sub.StripeSubscriptionID != nil && *sub.StripeSubscriptionID == subID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSubRepo) CreateIfAbsent(_ context.Context, sub *db_models.Subscription) error {
	if _, exists := f.rows[sub.UserID]; exists {
		return nil
	}
	copied := *sub
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	f.rows[sub.UserID] = &copied
	f.creates++
	return nil
}

func (f *fakeSubRepo) byID(id uuid.UUID) *db_models.Subscription {
	for _, sub := range f.rows {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}

func (f *fakeSubRepo) UpdatePeriod(_ context.Context, id uuid.UUID, start, end time.Time) error {
	if sub := f.byID(id); sub != nil {
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
	}
	return nil
}

func (f *fakeSubRepo) SetStatus(_ context.Context, id uuid.UUID, status db_models.SubscriptionStatus) error {
	if sub := f.byID(id); sub != nil {
		sub.Status = status
	}
	return nil
}

func (f *fakeSubRepo) SetStatusByStripeSubscriptionID(_ context.Context, stripeSubID string, status db_models.SubscriptionStatus) error {
	for _, sub := range f.rows {
		if sub.StripeSubscriptionID != nil && *sub.StripeSubscriptionID == stripeSubID {
			sub.Status = status
		}
	}
	return nil
}

func (f *fakeSubRepo) SetStripeCustomerID(_ context.Context, userID uuid.UUID, customerID string) error {
	if sub, ok := f.rows[userID]; ok {
		sub.StripeCustomerID = &customerID
	}
	return nil
}

func (f *fakeSubRepo) ApplyCheckout(_ context.Context, userID, planID uuid.UUID, customerID, stripeSubID string, start, end time.Time) error {
	sub, ok := f.rows[userID]
	if !ok {
		return nil
	}
	sub.PlanID = planID
	sub.Status = db_models.SubStatusActive
	sub.StripeCustomerID = &customerID
	sub.StripeSubscriptionID = &stripeSubID
	sub.CurrentPeriodStart = start
	sub.CurrentPeriodEnd = end
	return nil
}

func (f *fakeSubRepo) ApplyRenewal(_ context.Context, id uuid.UUID, stripeSubID string, start, end time.Time) error {
	if sub := f.byID(id); sub != nil {
		sub.Status = db_models.SubStatusActive
		sub.StripeSubscriptionID = &stripeSubID
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
	}
	return nil
}

func (f *fakeSubRepo) Downgrade(_ context.Context, id, freePlanID uuid.UUID, start, end time.Time) error {
	if sub := f.byID(id); sub != nil {
		sub.PlanID = freePlanID
		sub.Status = db_models.SubStatusFree
		sub.StripeCustomerID = nil
		sub.StripeSubscriptionID = nil
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
	}
	return nil
}

type fakeUsageRepo struct {
	rows         []*db_models.UsagePeriod
	incrementErr error
	increments   int
}

func (f *fakeUsageRepo) GetForPeriod(_ context.Context, userID uuid.UUID, start, end time.Time) (*db_models.UsagePeriod, error) {
	for _, row := range f.rows {
		if row.UserID == userID && row.PeriodStart.Equal(start) && row.PeriodEnd.Equal(end) {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUsageRepo) CreateIfAbsent(_ context.Context, usage *db_models.UsagePeriod) error {
	for _, row := range f.rows {
		if row.UserID == usage.UserID && row.PeriodStart.Equal(usage.PeriodStart) && row.PeriodEnd.Equal(usage.PeriodEnd) {
			return nil
		}
	}
	copied := *usage
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeUsageRepo) IncrementCounter(_ context.Context, id uuid.UUID, feature string, n int64) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	for _, row := range f.rows {
		if row.ID != id {
			continue
		}
		f.increments++
		switch feature {
		case db_models.FeatureResume:
			row.ResumeCount += n
		case db_models.FeatureCoverLetter:
			row.CoverLetterCount += n
		case db_models.FeatureLinkedin:
			row.LinkedinCount += n
		case db_models.FeatureJobMatch:
			row.JobMatchCount += n
		}
	}
	return nil
}

type fakePlanRepo struct {
	plans []*db_models.Plan
}

func (f *fakePlanRepo) GetPlanByID(_ context.Context, planID uuid.UUID) (*db_models.Plan, error) {
	for _, p := range f.plans {
		if p.ID == planID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlanRepo) GetPlanByCode(_ context.Context, code string) (*db_models.Plan, error) {
	for _, p := range f.plans {
		if p.Code == code {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlanRepo) GetAllPlans(_ context.Context) ([]db_models.Plan, error) {
	var out []db_models.Plan
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func makePlan(code string, limit int64) *db_models.Plan {
	limits, _ := json.Marshal(map[string]int64{
		db_models.FeatureResume:      limit,
		db_models.FeatureCoverLetter: limit,
		db_models.FeatureLinkedin:    limit,
		db_models.FeatureJobMatch:    limit,
	})
	return &db_models.Plan{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Code:      code,
		Name:      code,
		IsActive:  true,
		Limits:    datatypes.JSON(limits),
	}
}

func testPrincipal() auth.Principal {
	return auth.Principal{
		ID:       uuid.New().String(),
		Email:    "dev@example.com",
		Metadata: map[string]interface{}{"full_name": "Dev Example"},
	}
}

func newQuotaFixture(t *testing.T, freeLimit int64) (services.IQuotaService, *fakeSubRepo, *fakeUsageRepo, *fakePlanRepo) {
	t.Helper()
	subRepo := newFakeSubRepo()
	usageRepo := &fakeUsageRepo{}
	planRepo := &fakePlanRepo{plans: []*db_models.Plan{makePlan(db_models.PlanCodeFree, freeLimit)}}
	quota := services.NewQuotaService(subRepo, usageRepo, planRepo, zap.NewNop())
	return quota, subRepo, usageRepo, planRepo
}

// ---------- tests ----------

func TestAuthorizeAndGateProvisionsFreeTierOnce(t *testing.T) {
	quota, subRepo, usageRepo, _ := newQuotaFixture(t, 3)
	principal := testPrincipal()

	op := func() (interface{}, int) { return "analyzed", http.StatusOK }

	for i := 0; i < 2; i++ {
		resp, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, op)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "analyzed", resp)
	}

	assert.Equal(t, 1, subRepo.creates, "repeat requests must reuse the provisioned subscription")
	require.Len(t, usageRepo.rows, 1)
	assert.Equal(t, int64(2), usageRepo.rows[0].ResumeCount)

	userID := uuid.MustParse(principal.ID)
	sub := subRepo.rows[userID]
	require.NotNil(t, sub)
	assert.Equal(t, db_models.SubStatusFree, sub.Status)

	wantStart, wantEnd := utils.CurrentMonthPeriod(time.Now())
	assert.True(t, sub.CurrentPeriodStart.Equal(wantStart))
	assert.True(t, sub.CurrentPeriodEnd.Equal(wantEnd))
}

func TestAuthorizeAndGateDeniesAtLimitWithoutRunningBody(t *testing.T) {
	quota, _, usageRepo, _ := newQuotaFixture(t, 3)
	principal := testPrincipal()

	ran := false
	exhaust := func() (interface{}, int) { ran = true; return nil, http.StatusOK }
	for i := 0; i < 3; i++ {
		_, _, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, exhaust)
		require.NoError(t, err)
	}

	ran = false
	resp, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, exhaust)

	assert.False(t, ran, "gated body must not run after denial")
	assert.Nil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, status)

	var quotaErr *utils.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, db_models.FeatureResume, quotaErr.Feature)
	assert.Equal(t, int64(3), quotaErr.Limit)
	assert.Equal(t, int64(3), quotaErr.Usage)
	assert.Equal(t, int64(3), usageRepo.rows[0].ResumeCount, "denied request must not consume quota")
}

func TestAuthorizeAndGateDoesNotCommitOnFailedBody(t *testing.T) {
	quota, _, usageRepo, _ := newQuotaFixture(t, 3)
	principal := testPrincipal()

	resp, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) {
			return map[string]string{"error": "upstream down"}, http.StatusBadGateway
		})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotNil(t, resp)
	require.Len(t, usageRepo.rows, 1)
	assert.Equal(t, int64(0), usageRepo.rows[0].ResumeCount)
}

func TestAuthorizeAndGateFailsOpenWhenCommitFails(t *testing.T) {
	quota, _, usageRepo, _ := newQuotaFixture(t, 3)
	principal := testPrincipal()

	// Prime the rows so the pre-gate reads succeed, then break increments.
	_, _, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) { return "ok", http.StatusOK })
	require.NoError(t, err)

	usageRepo.incrementErr = errors.New("connection reset")
	resp, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) { return "still ok", http.StatusOK })

	require.NoError(t, err, "a post-success commit failure must not fail the request")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "still ok", resp)
}

func TestAuthorizeAndGateFailsClosedOnStoreOutage(t *testing.T) {
	quota, subRepo, _, _ := newQuotaFixture(t, 3)
	principal := testPrincipal()
	subRepo.getErr = utils.ErrStoreUnavailable

	ran := false
	_, _, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) { ran = true; return nil, http.StatusOK })

	require.ErrorIs(t, err, utils.ErrStoreUnavailable)
	assert.False(t, ran, "body must not run when entitlements cannot be read")
}

func TestRolloverStartsFreshPeriodAndKeepsHistory(t *testing.T) {
	quota, subRepo, usageRepo, planRepo := newQuotaFixture(t, 3)
	principal := testPrincipal()
	userID := uuid.MustParse(principal.ID)

	lastMonth := time.Now().AddDate(0, -1, 0)
	oldStart, oldEnd := utils.CurrentMonthPeriod(lastMonth)
	subRepo.rows[userID] = &db_models.Subscription{
		BaseModel:          db_models.BaseModel{ID: uuid.New()},
		UserID:             userID,
		PlanID:             planRepo.plans[0].ID,
		Status:             db_models.SubStatusFree,
		CurrentPeriodStart: oldStart,
		CurrentPeriodEnd:   oldEnd,
	}
	usageRepo.rows = append(usageRepo.rows, &db_models.UsagePeriod{
		BaseModel:   db_models.BaseModel{ID: uuid.New()},
		UserID:      userID,
		PlanID:      planRepo.plans[0].ID,
		PeriodStart: oldStart,
		PeriodEnd:   oldEnd,
		ResumeCount: 3, // exhausted last month
	})

	_, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) { return "ok", http.StatusOK })

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status, "rollover must reset entitlement for the new month")

	sub := subRepo.rows[userID]
	wantStart, wantEnd := utils.NextPeriod(oldEnd)
	assert.True(t, sub.CurrentPeriodStart.Equal(wantStart))
	assert.True(t, sub.CurrentPeriodEnd.Equal(wantEnd))

	require.Len(t, usageRepo.rows, 2, "rollover creates a new usage row, never reuses the old one")
	old, err := usageRepo.GetForPeriod(context.Background(), userID, oldStart, oldEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(3), old.ResumeCount, "historical counters stay untouched")

	fresh, err := usageRepo.GetForPeriod(context.Background(), userID, wantStart, wantEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.ResumeCount)
}

func TestUpgradeLiftsTheLimitMidPeriod(t *testing.T) {
	quota, subRepo, _, planRepo := newQuotaFixture(t, 3)
	proPlan := makePlan(db_models.PlanCodePro, 50)
	planRepo.plans = append(planRepo.plans, proPlan)
	principal := testPrincipal()

	ok := func() (interface{}, int) { return "ok", http.StatusOK }
	for i := 0; i < 3; i++ {
		_, _, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, ok)
		require.NoError(t, err)
	}

	_, status, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, ok)
	assert.Equal(t, http.StatusTooManyRequests, status)
	var quotaErr *utils.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)

	// Simulate the checkout webhook swapping the plan mid-period.
	userID := uuid.MustParse(principal.ID)
	subRepo.rows[userID].PlanID = proPlan.ID
	subRepo.rows[userID].Status = db_models.SubStatusActive

	_, status, err = quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1, ok)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status, "the current plan's limit applies, not a snapshot")
}

func TestAuthorizeAndGateRejectsNonUUIDPrincipal(t *testing.T) {
	quota, _, _, _ := newQuotaFixture(t, 3)
	principal := auth.Principal{ID: "not-a-uuid"}

	_, _, err := quota.AuthorizeAndGate(context.Background(), principal, db_models.FeatureResume, 1,
		func() (interface{}, int) { return nil, http.StatusOK })
	require.ErrorIs(t, err, utils.ErrProvisioning)
}
