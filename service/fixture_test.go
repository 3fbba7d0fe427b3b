package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	"github.com/dev-mohitbeniwal/grantflow/dao/memory"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/notification"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

const (
	requester = "dev@example.com"
	alice     = "alice@example.com"
	bob       = "bob@example.com"
	carol     = "carol@example.com"
	root      = "root@example.com"
	project1  = "proj-1"
	project2  = "proj-2"
)

type fixture struct {
	stores   dao.Stores
	bus      *util.EventBus
	services *Services
}

func seedAdmins(t *testing.T, store dao.AdminStore) {
	t.Helper()
	ctx := context.Background()
	for _, role := range []*model.AdminRole{
		{Email: alice, Role: model.RoleProjectAdmin, AssignedProjects: []string{project1}},
		{Email: bob, Role: model.RoleProjectAdmin, AssignedProjects: []string{project1}},
		{Email: carol, Role: model.RoleProjectAdmin, AssignedProjects: []string{project2}},
		{Email: root, Role: model.RoleSuperAdmin, AssignedProjects: []string{}},
	} {
		_, err := store.UpsertAdminRole(ctx, role)
		require.NoError(t, err)
	}
}

// newFixture wires the full service graph over memory stores. wrap, when
// given, can swap stores for fault-injecting decorators.
func newFixture(t *testing.T, cfg EngineConfig, wrap func(*dao.Stores)) *fixture {
	t.Helper()
	stores := memory.NewStores()
	seedAdmins(t, stores.Admins)
	if wrap != nil {
		wrap(&stores)
	}

	bus := util.NewEventBus()
	dispatcher := notification.NewDispatcher(stores.Notifications, notification.NewLogPublisher(), 24*time.Hour)
	services, err := InitializeServices(Dependencies{
		Stores:   stores,
		Notifier: dispatcher,
		EventBus: bus,
		Engine:   cfg,
	})
	require.NoError(t, err)
	t.Cleanup(bus.Wait)

	return &fixture{stores: stores, bus: bus, services: services}
}

func (f *fixture) submit(t *testing.T, asset, role string) *model.AccessRequest {
	t.Helper()
	req, err := f.services.Access.SubmitRequest(context.Background(), model.SubmitRequestInput{
		RequesterEmail: requester,
		AssetName:      asset,
		GCPProjectID:   project1,
		RequestedRole:  role,
		Justification:  "quarterly report",
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) inbox(t *testing.T, email string) []*model.Notification {
	t.Helper()
	f.bus.Wait()
	list, err := f.services.Notification.ListNotifications(context.Background(), email, false, 0, 0)
	require.NoError(t, err)
	return list
}

func notificationTypes(list []*model.Notification) []model.NotificationType {
	out := make([]model.NotificationType, 0, len(list))
	for _, n := range list {
		out = append(out, n.Type)
	}
	return out
}

// staleRequestStore answers the first n updates with a stale write.
type staleRequestStore struct {
	dao.RequestStore
	remaining int32
	updates   int32
}

func (s *staleRequestStore) UpdateRequest(ctx context.Context, req *model.AccessRequest, expectedVersion int64) (*model.AccessRequest, error) {
	atomic.AddInt32(&s.updates, 1)
	if atomic.AddInt32(&s.remaining, -1) >= 0 {
		return nil, grant_errors.ErrStaleWrite
	}
	return s.RequestStore.UpdateRequest(ctx, req, expectedVersion)
}

// failingGrantStore fails the first remaining CreateGrant calls with a
// database outage and then delegates.
type failingGrantStore struct {
	dao.GrantStore
	remaining int32
	creates   int32
}

func (s *failingGrantStore) CreateGrant(ctx context.Context, in model.GrantRequest) (*model.GrantedAccess, bool, error) {
	atomic.AddInt32(&s.creates, 1)
	if atomic.AddInt32(&s.remaining, -1) >= 0 {
		return nil, false, grant_errors.Database("create grant", errors.New("connection reset by peer"))
	}
	return s.GrantStore.CreateGrant(ctx, in)
}

type failingAdminStore struct {
	dao.AdminStore
}

func (failingAdminStore) GetAdminRole(ctx context.Context, email string) (*model.AdminRole, error) {
	return nil, grant_errors.Database("get admin role", errors.New("i/o timeout"))
}
