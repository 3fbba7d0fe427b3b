package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/dao/memory"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

type mapRoleCache struct {
	mu      sync.Mutex
	entries map[string]*model.AdminRole
	err     error
}

func newMapRoleCache() *mapRoleCache {
	return &mapRoleCache{entries: map[string]*model.AdminRole{}}
}

func (c *mapRoleCache) Get(ctx context.Context, email string) (*model.AdminRole, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	role, ok := c.entries[email]
	return role, ok, nil
}

func (c *mapRoleCache) Set(ctx context.Context, role *model.AdminRole) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[role.Email] = role
	return nil
}

func (c *mapRoleCache) Delete(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, email)
	return nil
}

func TestResolveRoleCachesHitsAndMisses(t *testing.T) {
	store := memory.NewAdminStore()
	seedAdmins(t, store)
	cache := newMapRoleCache()
	dir := NewAdminDirectory(store, cache)
	ctx := context.Background()

	role := dir.ResolveRole(ctx, "ALICE@example.com")
	require.NotNil(t, role)
	assert.Equal(t, model.RoleProjectAdmin, role.Role)
	assert.Contains(t, cache.entries, alice)

	assert.Nil(t, dir.ResolveRole(ctx, "nobody@example.com"))
	miss, ok := cache.entries["nobody@example.com"]
	require.True(t, ok)
	assert.Equal(t, model.RoleNone, miss.Role)

	// A cached miss answers without the store.
	_, err := store.UpsertAdminRole(ctx, &model.AdminRole{Email: "nobody@example.com", Role: model.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Nil(t, dir.ResolveRole(ctx, "nobody@example.com"))

	dir.Invalidate(ctx, "nobody@example.com")
	assert.True(t, dir.IsSuperAdmin(ctx, "nobody@example.com"))
}

func TestResolveRoleFallsThroughCacheErrors(t *testing.T) {
	store := memory.NewAdminStore()
	seedAdmins(t, store)
	cache := newMapRoleCache()
	cache.err = errors.New("redis: connection refused")
	dir := NewAdminDirectory(store, cache)

	assert.True(t, dir.CanActOnProject(context.Background(), bob, project1))
}

func TestResolveRoleFailsClosed(t *testing.T) {
	store := memory.NewAdminStore()
	seedAdmins(t, store)
	cache := newMapRoleCache()
	dir := NewAdminDirectory(failingAdminStore{AdminStore: store}, cache)
	ctx := context.Background()

	assert.Nil(t, dir.ResolveRole(ctx, root))
	assert.False(t, dir.IsSuperAdmin(ctx, root))
	assert.Empty(t, cache.entries)
}

func TestCanActScopesByProject(t *testing.T) {
	store := memory.NewAdminStore()
	seedAdmins(t, store)
	dir := NewAdminDirectory(store, nil)
	ctx := context.Background()
	req := &model.AccessRequest{GCPProjectID: project2}

	assert.True(t, dir.CanAct(ctx, carol, req))
	assert.False(t, dir.CanAct(ctx, alice, req))
	assert.True(t, dir.CanAct(ctx, root, req))
	assert.False(t, dir.CanAct(ctx, "", req))
	assert.False(t, dir.CanAct(ctx, root, nil))
}
