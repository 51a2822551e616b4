package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	branchrepo "github.com/acentera/acentera/internal/branch/repository"
	branchsvc "github.com/acentera/acentera/internal/branch/service"
	"github.com/acentera/acentera/internal/clock"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	commissionrepo "github.com/acentera/acentera/internal/commission/repository"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	rulerepo "github.com/acentera/acentera/internal/commissionrule/repository"
)

type testEnv struct {
	svc   commissiondomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&branchdomain.Branch{},
		&ruledomain.CommissionRule{},
		&commissiondomain.CommissionLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))

	branches := branchsvc.New(branchsvc.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  branchrepo.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		LogRepo:  commissionrepo.Provide(),
		RuleRepo: rulerepo.Provide(),
		Branches: branches,
	})

	return &testEnv{svc: svc, db: db, node: node, clock: fake}
}

func (e *testEnv) createBranch(t *testing.T, settings map[string]any) snowflake.ID {
	t.Helper()
	id := e.node.Generate()
	branch := &branchdomain.Branch{
		ID:       id,
		Name:     "Kadikoy",
		Code:     "branch-" + id.String(),
		IsActive: true,
	}
	if settings != nil {
		branch.Settings = datatypes.JSONMap(settings)
	}
	require.NoError(t, e.db.Create(branch).Error)
	return id
}

func (e *testEnv) createRule(t *testing.T, name string, branchID, policyTypeID *snowflake.ID, formula string, validFrom time.Time, validTo *time.Time, createdAt time.Time) snowflake.ID {
	t.Helper()
	id := e.node.Generate()
	require.NoError(t, e.db.Create(&ruledomain.CommissionRule{
		ID:           id,
		Name:         name,
		BranchID:     branchID,
		PolicyTypeID: policyTypeID,
		Formula:      formula,
		ValidFrom:    validFrom,
		ValidTo:      validTo,
		IsActive:     true,
		CreatedAt:    createdAt,
	}).Error)
	return id
}

func (e *testEnv) countLogs(t *testing.T, saleID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&commissiondomain.CommissionLog{}).Where("sale_id = ?", saleID).Count(&count).Error)
	return count
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestSimulate_SpecificityOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	policyTypeID := env.node.Generate()
	from := day(2024, 1, 1)
	created := day(2024, 1, 1)

	env.createRule(t, "global", nil, nil, "ratio:0.01", from, nil, created)
	env.createRule(t, "policy-only", nil, &policyTypeID, "ratio:0.02", from, nil, created)
	env.createRule(t, "branch-only", &branchID, nil, "ratio:0.03", from, nil, created)
	winnerID := env.createRule(t, "branch-and-policy", &branchID, &policyTypeID, "ratio:0.04", from, nil, created)

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: policyTypeID.String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, commissiondomain.SourceRule, resolution.Source)
	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, winnerID, *resolution.RuleID)
	assert.Equal(t, "branch-and-policy", resolution.RuleName)
	assert.True(t, resolution.Amount.Equal(decimal.NewFromInt(40)), "got %s", resolution.Amount)
}

func TestSimulate_BranchScopeBeatsPolicyScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	policyTypeID := env.node.Generate()
	from := day(2024, 1, 1)

	env.createRule(t, "policy-only", nil, &policyTypeID, "ratio:0.2", from, nil, day(2024, 3, 1))
	winnerID := env.createRule(t, "branch-only", &branchID, nil, "ratio:0.1", from, nil, day(2024, 1, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: policyTypeID.String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	// Branch scope outranks policy-type scope even when the policy rule
	// is newer.
	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, winnerID, *resolution.RuleID)
	assert.True(t, resolution.Amount.Equal(decimal.NewFromInt(100)), "got %s", resolution.Amount)
}

func TestSimulate_RecencyBreaksTies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	policyTypeID := env.node.Generate()
	from := day(2024, 1, 1)

	env.createRule(t, "older", &branchID, &policyTypeID, "ratio:0.1", from, nil, day(2024, 1, 1))
	newerID := env.createRule(t, "newer", &branchID, &policyTypeID, "ratio:0.2", from, nil, day(2024, 2, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(500),
		BranchID:     branchID.String(),
		PolicyTypeID: policyTypeID.String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, newerID, *resolution.RuleID)
	assert.True(t, resolution.Amount.Equal(decimal.NewFromInt(100)), "got %s", resolution.Amount)
}

func TestSimulate_EqualCreatedAtFallsBackToID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	created := day(2024, 1, 1)

	env.createRule(t, "first", &branchID, nil, "ratio:0.1", day(2024, 1, 1), nil, created)
	secondID := env.createRule(t, "second", &branchID, nil, "ratio:0.2", day(2024, 1, 1), nil, created)

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(100),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, secondID, *resolution.RuleID)
}

func TestSimulate_ValidityWindowIsInclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	validTo := day(2024, 1, 31)
	env.createRule(t, "january", &branchID, nil, "ratio:0.1", day(2024, 1, 1), &validTo, day(2023, 12, 1))

	tests := []struct {
		name   string
		asOf   time.Time
		source commissiondomain.Source
	}{
		{"day before window", day(2023, 12, 31), commissiondomain.SourceNone},
		{"first day", day(2024, 1, 1), commissiondomain.SourceRule},
		{"mid window", day(2024, 1, 15), commissiondomain.SourceRule},
		{"last day", day(2024, 1, 31), commissiondomain.SourceRule},
		{"last day late evening", time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC), commissiondomain.SourceRule},
		{"day after window", day(2024, 2, 1), commissiondomain.SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
				Amount:       decimal.NewFromInt(1000),
				BranchID:     branchID.String(),
				PolicyTypeID: env.node.Generate().String(),
				AsOf:         tt.asOf,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.source, resolution.Source)
		})
	}
}

func TestSimulate_OpenEndedValidTo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	env.createRule(t, "evergreen", &branchID, nil, "ratio:0.1", day(2024, 1, 1), nil, day(2024, 1, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(300),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2030, 12, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, commissiondomain.SourceRule, resolution.Source)
	assert.True(t, resolution.Amount.Equal(decimal.NewFromInt(30)), "got %s", resolution.Amount)
}

func TestSimulate_ZeroAsOfUsesClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	validTo := day(2024, 6, 30)
	env.createRule(t, "june", &branchID, nil, "ratio:0.1", day(2024, 6, 1), &validTo, day(2024, 5, 1))

	// Clock sits at 2024-06-15, inside the window.
	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(100),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.SourceRule, resolution.Source)

	env.clock.Advance(31 * 24 * time.Hour)

	resolution, err = env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(100),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.SourceNone, resolution.Source)
}

func TestSimulate_BranchDefaultFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, map[string]any{
		branchdomain.SettingCommissionRate: 0.12,
	})

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, commissiondomain.SourceBranch, resolution.Source)
	assert.Nil(t, resolution.RuleID)
	assert.True(t, resolution.Amount.Equal(decimal.NewFromInt(120)), "got %s", resolution.Amount)
}

func TestSimulate_ExplicitZeroRateStillCountsAsBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, map[string]any{
		branchdomain.SettingCommissionRate: 0,
	})

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	// A configured zero suppresses any further fallback: the source is
	// the branch, not NONE.
	assert.Equal(t, commissiondomain.SourceBranch, resolution.Source)
	assert.True(t, resolution.Amount.IsZero())
}

func TestSimulate_NoRuleNoDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, commissiondomain.SourceNone, resolution.Source)
	assert.True(t, resolution.Amount.IsZero())
}

func TestSimulate_MalformedFormulaResolvesToZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, map[string]any{
		branchdomain.SettingCommissionRate: 0.12,
	})
	ruleID := env.createRule(t, "broken", &branchID, nil, "fifteen percent", day(2024, 1, 1), nil, day(2024, 1, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	// The broken rule still wins the match; it does not fall through to
	// the branch default.
	assert.Equal(t, commissiondomain.SourceRule, resolution.Source)
	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, ruleID, *resolution.RuleID)
	assert.True(t, resolution.Amount.IsZero())
}

func TestNegativeFormulaClampsToZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, map[string]any{
		branchdomain.SettingCommissionRate: 0.12,
	})
	ruleID := env.createRule(t, "clawback", &branchID, nil, "raw:-50", day(2024, 1, 1), nil, day(2024, 1, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	// The negative rule still wins the match, but its amount is clamped
	// rather than surfaced as a debt.
	assert.Equal(t, commissiondomain.SourceRule, resolution.Source)
	require.NotNil(t, resolution.RuleID)
	assert.Equal(t, ruleID, *resolution.RuleID)
	assert.True(t, resolution.Amount.IsZero())

	saleID := env.node.Generate()
	amount, err := env.svc.CalculateAndLog(ctx, commissiondomain.CalculateInput{
		SaleID:       saleID.String(),
		EmployeeID:   env.node.Generate().String(),
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, int64(0), env.countLogs(t, saleID))
}

func TestSimulate_RoundsToCurrencyScale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	env.createRule(t, "odd ratio", &branchID, nil, "ratio:0.333", day(2024, 1, 1), nil, day(2024, 1, 1))

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       decimal.RequireFromString("100.01"),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	})
	require.NoError(t, err)

	// 100.01 * 0.333 = 33.30333, rounded to 2 places.
	assert.True(t, resolution.Amount.Equal(decimal.RequireFromString("33.30")), "got %s", resolution.Amount)
}

func TestCalculateAndLog_ExactlyOneRowPerSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	ruleID := env.createRule(t, "flat", &branchID, nil, "raw:50", day(2024, 1, 1), nil, day(2024, 1, 1))

	saleID := env.node.Generate()
	employeeID := env.node.Generate()

	input := commissiondomain.CalculateInput{
		SaleID:       saleID.String(),
		EmployeeID:   employeeID.String(),
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 1),
	}

	for i := 0; i < 3; i++ {
		amount, err := env.svc.CalculateAndLog(ctx, input)
		require.NoError(t, err)
		assert.True(t, amount.Equal(decimal.NewFromInt(50)), "got %s", amount)
	}

	assert.Equal(t, int64(1), env.countLogs(t, saleID))

	log, err := env.svc.LogForSale(ctx, saleID.String())
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, saleID, log.SaleID)
	assert.Equal(t, employeeID, log.EmployeeID)
	assert.Equal(t, commissiondomain.SourceRule, log.Source)
	require.NotNil(t, log.RuleID)
	assert.Equal(t, ruleID, *log.RuleID)
	assert.True(t, log.Amount.Equal(decimal.NewFromInt(50)))
}

func TestCalculateAndLog_ZeroResolutionRemovesExistingRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, nil)
	validTo := day(2024, 6, 30)
	env.createRule(t, "june only", &branchID, nil, "ratio:0.1", day(2024, 6, 1), &validTo, day(2024, 5, 1))

	saleID := env.node.Generate()
	input := commissiondomain.CalculateInput{
		SaleID:       saleID.String(),
		EmployeeID:   env.node.Generate().String(),
		Amount:       decimal.NewFromInt(1000),
		BranchID:     branchID.String(),
		PolicyTypeID: env.node.Generate().String(),
		AsOf:         day(2024, 6, 15),
	}

	amount, err := env.svc.CalculateAndLog(ctx, input)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(1), env.countLogs(t, saleID))

	// Recalculating outside the window resolves to zero and clears the
	// previous row instead of leaving it stale.
	input.AsOf = day(2024, 7, 15)
	amount, err = env.svc.CalculateAndLog(ctx, input)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, int64(0), env.countLogs(t, saleID))
}

func TestCalculateAndLog_InvalidIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CalculateAndLog(ctx, commissiondomain.CalculateInput{
		SaleID:     "not-a-snowflake",
		EmployeeID: env.node.Generate().String(),
	})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidSale)

	_, err = env.svc.CalculateAndLog(ctx, commissiondomain.CalculateInput{
		SaleID:     env.node.Generate().String(),
		EmployeeID: "",
	})
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidEmployee)
}

func TestSimulate_MatchesCalculateAndLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	branchID := env.createBranch(t, map[string]any{
		branchdomain.SettingCommissionRate: 0.05,
	})
	policyTypeID := env.node.Generate()
	env.createRule(t, "scoped", &branchID, &policyTypeID, "ratio:0.15", day(2024, 1, 1), nil, day(2024, 1, 1))

	amount := decimal.RequireFromString("1234.56")
	asOf := day(2024, 6, 1)

	resolution, err := env.svc.Simulate(ctx, commissiondomain.ResolveInput{
		Amount:       amount,
		BranchID:     branchID.String(),
		PolicyTypeID: policyTypeID.String(),
		AsOf:         asOf,
	})
	require.NoError(t, err)

	logged, err := env.svc.CalculateAndLog(ctx, commissiondomain.CalculateInput{
		SaleID:       env.node.Generate().String(),
		EmployeeID:   env.node.Generate().String(),
		Amount:       amount,
		BranchID:     branchID.String(),
		PolicyTypeID: policyTypeID.String(),
		AsOf:         asOf,
	})
	require.NoError(t, err)

	assert.True(t, resolution.Amount.Equal(logged), "simulate %s != calculate %s", resolution.Amount, logged)
}
