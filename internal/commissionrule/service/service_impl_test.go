package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/internal/commissionrule/repository"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CommissionRule{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestCreateRule_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	validFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  domain.CreateRuleRequest
		want error
	}{
		{
			"empty name",
			domain.CreateRuleRequest{Formula: "ratio:0.1", ValidFrom: validFrom},
			domain.ErrInvalidName,
		},
		{
			"bad formula",
			domain.CreateRuleRequest{Name: "r", Formula: "garbage", ValidFrom: validFrom},
			domain.ErrInvalidFormula,
		},
		{
			"overlong formula",
			domain.CreateRuleRequest{
				Name:      "r",
				Formula:   "ratio:0." + strings.Repeat("1", 100),
				ValidFrom: validFrom,
			},
			domain.ErrInvalidFormula,
		},
		{
			"missing valid_from",
			domain.CreateRuleRequest{Name: "r", Formula: "ratio:0.1"},
			domain.ErrInvalidValidFrom,
		},
		{
			"valid_to before valid_from",
			domain.CreateRuleRequest{
				Name:      "r",
				Formula:   "ratio:0.1",
				ValidFrom: validFrom,
				ValidTo:   ptrTime(validFrom.AddDate(0, 0, -1)),
			},
			domain.ErrInvalidValidTo,
		},
		{
			"malformed branch id",
			domain.CreateRuleRequest{
				Name:      "r",
				Formula:   "ratio:0.1",
				ValidFrom: validFrom,
				BranchID:  "nope",
			},
			domain.ErrInvalidBranch,
		},
		{
			"malformed policy type id",
			domain.CreateRuleRequest{
				Name:         "r",
				Formula:      "ratio:0.1",
				ValidFrom:    validFrom,
				PolicyTypeID: "nope",
			},
			domain.ErrInvalidPolicyType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateRule_NormalizesWindow(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	validFrom := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	validTo := time.Date(2024, 3, 20, 9, 15, 0, 0, time.UTC)

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Name:      "march",
		BranchID:  node.Generate().String(),
		Formula:   "ratio:0.1",
		ValidFrom: validFrom,
		ValidTo:   &validTo,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), rule.ValidFrom)
	require.NotNil(t, rule.ValidTo)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), *rule.ValidTo)
	assert.True(t, rule.IsActive)
	assert.Equal(t, 2, rule.SpecificityScore())
}

func TestCreateRule_SameDayWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Name:      "one day",
		Formula:   "raw:25",
		ValidFrom: d,
		ValidTo:   &d,
	})
	require.NoError(t, err)
	assert.Equal(t, rule.ValidFrom, *rule.ValidTo)
}

func TestListRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, domain.CreateRuleRequest{
			Name:      name,
			Formula:   "ratio:0.1",
			ValidFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListRuleRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Rules, 3)

	resp, err = svc.List(ctx, domain.ListRuleRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Rules, 2)
}

func TestDeleteRule(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, domain.CreateRuleRequest{
		Name:      "to delete",
		Formula:   "ratio:0.1",
		ValidFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.DeleteRuleRequest{ID: rule.ID.String()}))

	err = svc.Delete(ctx, domain.DeleteRuleRequest{ID: rule.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, domain.DeleteRuleRequest{ID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	err = svc.Delete(ctx, domain.DeleteRuleRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ptrTime(t time.Time) *time.Time { return &t }
