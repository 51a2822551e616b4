package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/acentera/acentera/internal/branch/domain"
	"github.com/acentera/acentera/internal/branch/repository"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Branch{}))

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

func TestCreateBranch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	branch, err := svc.Create(ctx, domain.CreateBranchRequest{
		Name: "Kadikoy",
		Code: "kad",
		Settings: map[string]any{
			domain.SettingCommissionRate: 0.1,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "KAD", branch.Code)
	assert.True(t, branch.IsActive)

	rate, ok := branch.CommissionRate()
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.1")))
}

func TestCreateBranch_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateBranchRequest{Code: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateBranchRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateBranchRequest{
		Name:     "X",
		Code:     "X",
		Settings: map[string]any{domain.SettingCommissionRate: 1.5},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.Create(ctx, domain.CreateBranchRequest{
		Name:     "X",
		Code:     "X2",
		Settings: map[string]any{domain.SettingCommissionRate: -0.1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.Create(ctx, domain.CreateBranchRequest{
		Name:     "X",
		Code:     "X3",
		Settings: map[string]any{domain.SettingCommissionRate: "not a number"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestDefaultRate(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	withRate, err := svc.Create(ctx, domain.CreateBranchRequest{
		Name:     "With",
		Code:     "W",
		Settings: map[string]any{domain.SettingCommissionRate: 0.12},
	})
	require.NoError(t, err)

	withZero, err := svc.Create(ctx, domain.CreateBranchRequest{
		Name:     "Zero",
		Code:     "Z",
		Settings: map[string]any{domain.SettingCommissionRate: 0},
	})
	require.NoError(t, err)

	without, err := svc.Create(ctx, domain.CreateBranchRequest{
		Name: "Without",
		Code: "N",
	})
	require.NoError(t, err)

	rate, ok, err := svc.DefaultRate(ctx, withRate.ID.String())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.12")))

	// Explicit zero counts as configured.
	rate, ok, err = svc.DefaultRate(ctx, withZero.ID.String())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rate.IsZero())

	_, ok, err = svc.DefaultRate(ctx, without.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown branch is absent, not an error.
	_, ok, err = svc.DefaultRate(ctx, node.Generate().String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetBranchByID(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateBranchRequest{Name: "B", Code: "B"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, domain.GetBranchRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByID(ctx, domain.GetBranchRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(ctx, domain.GetBranchRequest{ID: "junk"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
