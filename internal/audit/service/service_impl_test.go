package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/acentera/acentera/internal/audit/domain"
	"github.com/acentera/acentera/internal/audit/repository"
)

func newTestService(t *testing.T) auditdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestAuditLog_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.AuditLog(ctx, nil, "  ", "sale", nil, nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.AuditLog(ctx, nil, "sale.create", "sale", nil, map[string]any{"amount": "100"})
	assert.NoError(t, err)
}

func TestListAuditLogs_CursorPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.AuditLog(ctx, nil, "sale.create", "sale", nil, nil))
		// Distinct created_at values keep the keyset ordering observable.
		time.Sleep(2 * time.Millisecond)
	}

	first, err := svc.List(ctx, auditdomain.ListAuditLogRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.AuditLogs, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, second.AuditLogs, 2)
	assert.True(t, second.HasMore)

	third, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		PageSize:  2,
		PageToken: second.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, third.AuditLogs, 1)
	assert.False(t, third.HasMore)

	// No overlap across pages.
	seen := map[snowflake.ID]bool{}
	for _, page := range [][]auditdomain.AuditLog{first.AuditLogs, second.AuditLogs, third.AuditLogs} {
		for _, entry := range page {
			assert.False(t, seen[entry.ID], "duplicate entry %s", entry.ID)
			seen[entry.ID] = true
		}
	}
}

func TestListAuditLogs_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	target := "42"
	require.NoError(t, svc.AuditLog(ctx, nil, "sale.create", "sale", &target, nil))
	require.NoError(t, svc.AuditLog(ctx, nil, "branch.create", "branch", nil, nil))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "sale.create"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, "sale", resp.AuditLogs[0].TargetType)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{TargetID: target})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 1)
}

func TestListAuditLogs_BadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{PageToken: "!!not-base64!!"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
