// Package memory holds mutex-guarded in-process implementations of every
// store contract. Used by tests and by the "memory" store driver.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// NewStores returns a fresh, empty set of memory stores.
func NewStores() dao.Stores {
	return dao.Stores{
		Requests:      NewRequestStore(),
		Grants:        NewGrantStore(),
		Notifications: NewNotificationStore(),
		Admins:        NewAdminStore(),
	}
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

type RequestStore struct {
	requests map[string]*model.AccessRequest
	mu       sync.RWMutex
}

var _ dao.RequestStore = &RequestStore{}

func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[string]*model.AccessRequest)}
}

func (s *RequestStore) CreateRequest(ctx context.Context, req *model.AccessRequest) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if _, ok := s.requests[req.ID]; ok {
		return grant_errors.ErrRequestExists
	}
	s.requests[req.ID] = req.Clone()
	return nil
}

func (s *RequestStore) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, grant_errors.ErrRequestNotFound
	}
	return req.Clone(), nil
}

func (s *RequestStore) UpdateRequest(ctx context.Context, req *model.AccessRequest, expectedVersion int64) (*model.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[req.ID]
	if !ok {
		return nil, grant_errors.ErrRequestNotFound
	}
	if current.Version != expectedVersion {
		return nil, grant_errors.ErrStaleWrite
	}
	next := req.Clone()
	next.Version = expectedVersion + 1
	s.requests[req.ID] = next
	return next.Clone(), nil
}

func (s *RequestStore) ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var result []*model.AccessRequest
	for _, req := range s.requests {
		if (filter.Status == "" || req.Status == filter.Status) &&
			(filter.ProjectID == "" || req.GCPProjectID == filter.ProjectID) &&
			(filter.RequesterEmail == "" || req.RequesterEmail == filter.RequesterEmail) {
			result = append(result, req.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return model.Paginate(result, filter.Limit, filter.Offset), nil
}

type GrantStore struct {
	grants map[string]*model.GrantedAccess
	// active maps a tuple key to the id of its single ACTIVE grant.
	active map[string]string
	mu     sync.RWMutex
}

var _ dao.GrantStore = &GrantStore{}

func NewGrantStore() *GrantStore {
	return &GrantStore{
		grants: make(map[string]*model.GrantedAccess),
		active: make(map[string]string),
	}
}

func (s *GrantStore) CreateGrant(ctx context.Context, in model.GrantRequest) (*model.GrantedAccess, bool, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, false, err
	}
	key := model.GrantKey(in.UserEmail, in.AssetName, in.Role)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.active[key]; ok {
		return s.grants[id].Clone(), false, nil
	}
	grant := &model.GrantedAccess{
		ID:                uuid.New().String(),
		UserEmail:         in.UserEmail,
		AssetName:         in.AssetName,
		GCPProjectID:      in.ProjectID,
		Role:              in.Role,
		GrantedAt:         in.GrantedAt,
		GrantedBy:         in.GrantedBy,
		OriginalRequestID: in.RequestID,
		Status:            model.GrantActive,
	}
	s.grants[grant.ID] = grant
	s.active[key] = grant.ID
	return grant.Clone(), true, nil
}

func (s *GrantStore) GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return nil, grant_errors.ErrGrantNotFound
	}
	return grant.Clone(), nil
}

func (s *GrantStore) FindActiveGrant(ctx context.Context, userEmail, assetName, role string) (*model.GrantedAccess, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.active[model.GrantKey(userEmail, assetName, role)]
	if !ok {
		return nil, grant_errors.ErrGrantNotFound
	}
	return s.grants[id].Clone(), nil
}

func (s *GrantStore) RevokeGrant(ctx context.Context, grantID, revokedBy string, revokedAt time.Time) (*model.GrantedAccess, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return nil, grant_errors.ErrGrantNotFound
	}
	if grant.Status != model.GrantActive {
		return nil, grant_errors.ErrGrantNotActive
	}
	at := revokedAt
	grant.Status = model.GrantRevoked
	grant.RevokedAt = &at
	grant.RevokedBy = revokedBy
	delete(s.active, grant.Key())
	return grant.Clone(), nil
}

func (s *GrantStore) ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var result []*model.GrantedAccess
	for _, g := range s.grants {
		if (filter.Status == "" || g.Status == filter.Status) &&
			(filter.ProjectID == "" || g.GCPProjectID == filter.ProjectID) &&
			(filter.UserEmail == "" || g.UserEmail == filter.UserEmail) {
			result = append(result, g.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].GrantedAt.Equal(result[j].GrantedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].GrantedAt.After(result[j].GrantedAt)
	})
	return model.Paginate(result, filter.Limit, filter.Offset), nil
}

type NotificationStore struct {
	notifications map[string]*model.Notification
	mu            sync.RWMutex
}

var _ dao.NotificationStore = &NotificationStore{}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: make(map[string]*model.Notification)}
}

func copyNotification(n *model.Notification) *model.Notification {
	cp := *n
	if n.Metadata != nil {
		cp.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (s *NotificationStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	s.notifications[n.ID] = copyNotification(n)
	return nil
}

func (s *NotificationStore) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var result []*model.Notification
	for _, n := range s.notifications {
		if n.RecipientEmail != filter.RecipientEmail {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		if !filter.Now.IsZero() && n.Expired(filter.Now) {
			continue
		}
		result = append(result, copyNotification(n))
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return model.Paginate(result, filter.Limit, filter.Offset), nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, recipientEmail string, now time.Time) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientEmail == recipientEmail && !n.Read && !n.Expired(now) {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, recipientEmail, notificationID string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientEmail != recipientEmail {
		return grant_errors.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipientEmail string) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, n := range s.notifications {
		if n.RecipientEmail == recipientEmail && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *NotificationStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, n := range s.notifications {
		if n.Expired(now) {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

type AdminStore struct {
	roles map[string]*model.AdminRole
	mu    sync.RWMutex
}

var _ dao.AdminStore = &AdminStore{}

func NewAdminStore() *AdminStore {
	return &AdminStore{roles: make(map[string]*model.AdminRole)}
}

func copyAdminRole(r *model.AdminRole) *model.AdminRole {
	cp := *r
	cp.AssignedProjects = append([]string{}, r.AssignedProjects...)
	return &cp
}

func (s *AdminStore) GetAdminRole(ctx context.Context, email string) (*model.AdminRole, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[email]
	if !ok {
		return nil, grant_errors.ErrAdminRoleNotFound
	}
	return copyAdminRole(role), nil
}

func (s *AdminStore) UpsertAdminRole(ctx context.Context, role *model.AdminRole) (*model.AdminRole, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := copyAdminRole(role)
	if existing, ok := s.roles[role.Email]; ok {
		next.CreatedAt = existing.CreatedAt
		next.CreatedBy = existing.CreatedBy
	}
	s.roles[role.Email] = next
	return copyAdminRole(next), nil
}

func (s *AdminStore) DeleteAdminRole(ctx context.Context, email string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[email]; !ok {
		return grant_errors.ErrAdminRoleNotFound
	}
	delete(s.roles, email)
	return nil
}

func (s *AdminStore) ListAdminRoles(ctx context.Context) ([]*model.AdminRole, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	result := make([]*model.AdminRole, 0, len(s.roles))
	for _, r := range s.roles {
		result = append(result, copyAdminRole(r))
	}
	s.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}
