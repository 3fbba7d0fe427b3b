// Package postgres implements the store contracts on gorm and PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dev-mohitbeniwal/grantflow/dao"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// activeGrantIndex enforces one ACTIVE grant per (user, asset, role).
const activeGrantIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS ux_granted_access_active_tuple
ON granted_access (user_email, asset_name, role)
WHERE status = 'ACTIVE'`

// Store satisfies every store contract over a single gorm handle.
type Store struct {
	db *gorm.DB
}

var (
	_ dao.RequestStore      = &Store{}
	_ dao.GrantStore        = &Store{}
	_ dao.NotificationStore = &Store{}
	_ dao.AdminStore        = &Store{}
)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Stores() dao.Stores {
	return dao.Stores{Requests: s, Grants: s, Notifications: s, Admins: s}
}

// Migrate creates tables and the partial unique index.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&accessRequestRow{}, &grantedAccessRow{}, &notificationRow{}, &adminRoleRow{}); err != nil {
		return grant_errors.Database("migrate", err)
	}
	if err := db.Exec(activeGrantIndex).Error; err != nil {
		return grant_errors.Database("create active grant index", err)
	}
	logger.Info("Postgres schema migrated")
	return nil
}

func (s *Store) CreateRequest(ctx context.Context, req *model.AccessRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	err := s.db.WithContext(ctx).Create(requestToRow(req)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return grant_errors.ErrRequestExists
		}
		logger.Error("Failed to create access request", zap.Error(err), zap.String("requestID", req.ID))
		return grant_errors.Database("create access request", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (*model.AccessRequest, error) {
	var row accessRequestRow
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grant_errors.ErrRequestNotFound
		}
		return nil, grant_errors.Database("get access request", err)
	}
	return row.toModel(), nil
}

// compareAndSetRequest updates req only while the stored version still equals
// expectedVersion, bumping it by one. Zero rows affected means stale or missing.
func compareAndSetRequest(tx *gorm.DB, req *model.AccessRequest, expectedVersion int64) *gorm.DB {
	row := requestToRow(req)
	return tx.Model(&accessRequestRow{}).
		Where("id = ? AND version = ?", req.ID, expectedVersion).
		Updates(map[string]any{
			"status":        row.Status,
			"approvals":     row.Approvals,
			"admin_note":    row.AdminNote,
			"reviewed_by":   row.ReviewedBy,
			"reviewed_at":   row.ReviewedAt,
			"grant_id":      row.GrantID,
			"justification": row.Justification,
			"updated_at":    row.UpdatedAt,
			"version":       expectedVersion + 1,
		})
}

func (s *Store) UpdateRequest(ctx context.Context, req *model.AccessRequest, expectedVersion int64) (*model.AccessRequest, error) {
	result := compareAndSetRequest(s.db.WithContext(ctx), req, expectedVersion)
	if result.Error != nil {
		logger.Error("Failed to update access request", zap.Error(result.Error), zap.String("requestID", req.ID))
		return nil, grant_errors.Database("update access request", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetRequest(ctx, req.ID); err != nil {
			return nil, err
		}
		return nil, grant_errors.ErrStaleWrite
	}
	return s.GetRequest(ctx, req.ID)
}

func (s *Store) ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.AccessRequest, error) {
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)
	q := s.db.WithContext(ctx).Model(&accessRequestRow{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.ProjectID != "" {
		q = q.Where("gcp_project_id = ?", filter.ProjectID)
	}
	if filter.RequesterEmail != "" {
		q = q.Where("requester_email = ?", filter.RequesterEmail)
	}
	var rows []accessRequestRow
	if err := q.Order("submitted_at DESC").Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, grant_errors.Database("list access requests", err)
	}
	out := make([]*model.AccessRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (s *Store) CreateGrant(ctx context.Context, in model.GrantRequest) (*model.GrantedAccess, bool, error) {
	row := &grantedAccessRow{
		ID:                uuid.New().String(),
		UserEmail:         in.UserEmail,
		AssetName:         in.AssetName,
		GCPProjectID:      in.ProjectID,
		Role:              in.Role,
		GrantedAt:         in.GrantedAt.UTC(),
		GrantedBy:         in.GrantedBy,
		OriginalRequestID: in.RequestID,
		Status:            string(model.GrantActive),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		logger.Error("Failed to issue grant", zap.Error(result.Error), zap.String("user", in.UserEmail), zap.String("asset", in.AssetName))
		return nil, false, grant_errors.Database("create grant", result.Error)
	}
	if result.RowsAffected == 0 {
		existing, err := s.FindActiveGrant(ctx, in.UserEmail, in.AssetName, in.Role)
		if err != nil {
			return nil, false, grant_errors.Database("create grant", err)
		}
		return existing, false, nil
	}
	return row.toModel(), true, nil
}

func (s *Store) GetGrant(ctx context.Context, grantID string) (*model.GrantedAccess, error) {
	var row grantedAccessRow
	if err := s.db.WithContext(ctx).Where("id = ?", grantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grant_errors.ErrGrantNotFound
		}
		return nil, grant_errors.Database("get grant", err)
	}
	return row.toModel(), nil
}

func (s *Store) FindActiveGrant(ctx context.Context, userEmail, assetName, role string) (*model.GrantedAccess, error) {
	var row grantedAccessRow
	err := s.db.WithContext(ctx).
		Where("user_email = ? AND asset_name = ? AND role = ? AND status = ?", userEmail, assetName, role, string(model.GrantActive)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grant_errors.ErrGrantNotFound
		}
		return nil, grant_errors.Database("find active grant", err)
	}
	return row.toModel(), nil
}

func (s *Store) RevokeGrant(ctx context.Context, grantID, revokedBy string, revokedAt time.Time) (*model.GrantedAccess, error) {
	at := revokedAt.UTC()
	result := s.db.WithContext(ctx).Model(&grantedAccessRow{}).
		Where("id = ? AND status = ?", grantID, string(model.GrantActive)).
		Updates(map[string]any{
			"status":     string(model.GrantRevoked),
			"revoked_at": &at,
			"revoked_by": revokedBy,
		})
	if result.Error != nil {
		logger.Error("Failed to revoke grant", zap.Error(result.Error), zap.String("grantID", grantID))
		return nil, grant_errors.Database("revoke grant", result.Error)
	}
	grant, err := s.GetGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, grant_errors.ErrGrantNotActive
	}
	return grant, nil
}

func (s *Store) ListGrants(ctx context.Context, filter model.GrantFilter) ([]*model.GrantedAccess, error) {
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)
	q := s.db.WithContext(ctx).Model(&grantedAccessRow{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.ProjectID != "" {
		q = q.Where("gcp_project_id = ?", filter.ProjectID)
	}
	if filter.UserEmail != "" {
		q = q.Where("user_email = ?", filter.UserEmail)
	}
	var rows []grantedAccessRow
	if err := q.Order("granted_at DESC").Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, grant_errors.Database("list grants", err)
	}
	out := make([]*model.GrantedAccess, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return grant_errors.Validation(grant_errors.ErrInvalidRequestData, "notification metadata: "+err.Error())
	}
	row := &notificationRow{
		ID:             n.ID,
		RecipientEmail: n.RecipientEmail,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		Metadata:       metadata,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt.UTC(),
		ExpiresAt:      n.ExpiresAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.Error("Failed to create notification", zap.Error(err), zap.String("recipient", n.RecipientEmail))
		return grant_errors.Database("create notification", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error) {
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)
	q := s.db.WithContext(ctx).Model(&notificationRow{}).Where("recipient_email = ?", filter.RecipientEmail)
	if filter.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	if !filter.Now.IsZero() {
		q = q.Where("expires_at > ?", filter.Now.UTC())
	}
	var rows []notificationRow
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, grant_errors.Database("list notifications", err)
	}
	out := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		n := &model.Notification{
			ID:             rows[i].ID,
			RecipientEmail: rows[i].RecipientEmail,
			Type:           model.NotificationType(rows[i].Type),
			Title:          rows[i].Title,
			Message:        rows[i].Message,
			Read:           rows[i].Read,
			CreatedAt:      rows[i].CreatedAt.UTC(),
			ExpiresAt:      rows[i].ExpiresAt.UTC(),
		}
		if len(rows[i].Metadata) > 0 {
			if err := json.Unmarshal(rows[i].Metadata, &n.Metadata); err != nil {
				return nil, grant_errors.Database("decode notification metadata", err)
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) CountUnread(ctx context.Context, recipientEmail string, now time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_email = ? AND read = ? AND expires_at > ?", recipientEmail, false, now.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, grant_errors.Database("count unread notifications", err)
	}
	return int(count), nil
}

func (s *Store) MarkRead(ctx context.Context, recipientEmail, notificationID string) error {
	result := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("id = ? AND recipient_email = ?", notificationID, recipientEmail).
		Update("read", true)
	if result.Error != nil {
		return grant_errors.Database("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return grant_errors.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, recipientEmail string) (int, error) {
	result := s.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_email = ? AND read = ?", recipientEmail, false).
		Update("read", true)
	if result.Error != nil {
		return 0, grant_errors.Database("mark all notifications read", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&notificationRow{})
	if result.Error != nil {
		return 0, grant_errors.Database("delete expired notifications", result.Error)
	}
	logger.Info("Expired notifications purged", zap.Int64("deleted", result.RowsAffected))
	return int(result.RowsAffected), nil
}

func (s *Store) GetAdminRole(ctx context.Context, email string) (*model.AdminRole, error) {
	var row adminRoleRow
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, grant_errors.ErrAdminRoleNotFound
		}
		return nil, grant_errors.Database("get admin role", err)
	}
	return row.toModel(), nil
}

func (s *Store) UpsertAdminRole(ctx context.Context, role *model.AdminRole) (*model.AdminRole, error) {
	row := &adminRoleRow{
		Email:            role.Email,
		Role:             string(role.Role),
		AssignedProjects: append([]string{}, role.AssignedProjects...),
		CreatedBy:        role.CreatedBy,
		CreatedAt:        role.CreatedAt.UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "assigned_projects"}),
	}).Create(row).Error
	if err != nil {
		logger.Error("Failed to upsert admin role", zap.Error(err), zap.String("email", role.Email))
		return nil, grant_errors.Database("upsert admin role", err)
	}
	return s.GetAdminRole(ctx, role.Email)
}

func (s *Store) DeleteAdminRole(ctx context.Context, email string) error {
	result := s.db.WithContext(ctx).Where("email = ?", email).Delete(&adminRoleRow{})
	if result.Error != nil {
		return grant_errors.Database("delete admin role", result.Error)
	}
	if result.RowsAffected == 0 {
		return grant_errors.ErrAdminRoleNotFound
	}
	return nil
}

func (s *Store) ListAdminRoles(ctx context.Context) ([]*model.AdminRole, error) {
	var rows []adminRoleRow
	if err := s.db.WithContext(ctx).Order("email").Find(&rows).Error; err != nil {
		return nil, grant_errors.Database("list admin roles", err)
	}
	out := make([]*model.AdminRole, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}
