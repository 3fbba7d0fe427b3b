package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/config"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

func memoryConfig() *config.Configuration {
	return &config.Configuration{
		Store:     config.StoreConfiguration{Driver: "memory"},
		Lifecycle: config.LifecycleConfiguration{RequiredApprovals: 1, MaxWriteRetries: 3, GrantIssueRetries: 2},
		Notification: config.NotificationConfiguration{
			Retention: time.Hour,
			Transport: "log",
		},
	}
}

func TestNewWiresMemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Limiter)
	assert.Equal(t, 1, a.Services.Engine.RequiredApprovals())

	_, err = a.Services.Admin.BootstrapSuperAdmin(ctx, "root@example.com", "test")
	require.NoError(t, err)

	req, err := a.Services.Access.SubmitRequest(ctx, model.SubmitRequestInput{
		RequesterEmail: "dev@example.com",
		AssetName:      "orders",
		GCPProjectID:   "proj-1",
		RequestedRole:  "roles/viewer",
	})
	require.NoError(t, err)

	approved, err := a.Services.Access.ApproveRequest(ctx, req.ID, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	a.EventBus.Wait()
	count, err := a.Services.Notification.UnreadCount(ctx, "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = "sqlite"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRequiresKafkaBrokers(t *testing.T) {
	cfg := memoryConfig()
	cfg.Notification.Transport = "kafka"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
