package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/dev-mohitbeniwal/grantflow/model"
)

type accessRequestRow struct {
	ID             string         `gorm:"column:id;primaryKey"`
	RequesterEmail string         `gorm:"column:requester_email;not null;index"`
	AssetName      string         `gorm:"column:asset_name;not null"`
	GCPProjectID   string         `gorm:"column:gcp_project_id;not null;index"`
	RequestedRole  string         `gorm:"column:requested_role;not null"`
	Justification  string         `gorm:"column:justification"`
	Status         string         `gorm:"column:status;not null;index"`
	Approvals      pq.StringArray `gorm:"column:approvals;type:text[]"`
	AdminNote      string         `gorm:"column:admin_note"`
	ReviewedBy     string         `gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time     `gorm:"column:reviewed_at"`
	GrantID        string         `gorm:"column:grant_id"`
	SubmittedAt    time.Time      `gorm:"column:submitted_at;not null;index"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null;autoUpdateTime:false"`
	Version        int64          `gorm:"column:version;not null;default:0"`
}

func (accessRequestRow) TableName() string { return "access_requests" }

func requestToRow(r *model.AccessRequest) *accessRequestRow {
	return &accessRequestRow{
		ID:             r.ID,
		RequesterEmail: r.RequesterEmail,
		AssetName:      r.AssetName,
		GCPProjectID:   r.GCPProjectID,
		RequestedRole:  r.RequestedRole,
		Justification:  r.Justification,
		Status:         string(r.Status),
		Approvals:      pq.StringArray(append([]string{}, r.Approvals...)),
		AdminNote:      r.AdminNote,
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     r.ReviewedAt,
		GrantID:        r.GrantID,
		SubmittedAt:    r.SubmittedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		Version:        r.Version,
	}
}

func (row *accessRequestRow) toModel() *model.AccessRequest {
	return &model.AccessRequest{
		ID:             row.ID,
		RequesterEmail: row.RequesterEmail,
		AssetName:      row.AssetName,
		GCPProjectID:   row.GCPProjectID,
		RequestedRole:  row.RequestedRole,
		Justification:  row.Justification,
		Status:         model.RequestStatus(row.Status),
		Approvals:      append([]string{}, row.Approvals...),
		AdminNote:      row.AdminNote,
		ReviewedBy:     row.ReviewedBy,
		ReviewedAt:     row.ReviewedAt,
		GrantID:        row.GrantID,
		SubmittedAt:    row.SubmittedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
		Version:        row.Version,
	}
}

type grantedAccessRow struct {
	ID                string     `gorm:"column:id;primaryKey"`
	UserEmail         string     `gorm:"column:user_email;not null;index"`
	AssetName         string     `gorm:"column:asset_name;not null"`
	GCPProjectID      string     `gorm:"column:gcp_project_id;not null;index"`
	Role              string     `gorm:"column:role;not null"`
	GrantedAt         time.Time  `gorm:"column:granted_at;not null;index"`
	GrantedBy         string     `gorm:"column:granted_by"`
	OriginalRequestID string     `gorm:"column:original_request_id;index"`
	Status            string     `gorm:"column:status;not null"`
	RevokedAt         *time.Time `gorm:"column:revoked_at"`
	RevokedBy         string     `gorm:"column:revoked_by"`
}

func (grantedAccessRow) TableName() string { return "granted_access" }

func (row *grantedAccessRow) toModel() *model.GrantedAccess {
	return &model.GrantedAccess{
		ID:                row.ID,
		UserEmail:         row.UserEmail,
		AssetName:         row.AssetName,
		GCPProjectID:      row.GCPProjectID,
		Role:              row.Role,
		GrantedAt:         row.GrantedAt.UTC(),
		GrantedBy:         row.GrantedBy,
		OriginalRequestID: row.OriginalRequestID,
		Status:            model.GrantStatus(row.Status),
		RevokedAt:         row.RevokedAt,
		RevokedBy:         row.RevokedBy,
	}
}

type notificationRow struct {
	ID             string    `gorm:"column:id;primaryKey"`
	RecipientEmail string    `gorm:"column:recipient_email;not null;index"`
	Type           string    `gorm:"column:type;not null"`
	Title          string    `gorm:"column:title"`
	Message        string    `gorm:"column:message"`
	Metadata       []byte    `gorm:"column:metadata;type:jsonb"`
	Read           bool      `gorm:"column:read;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	ExpiresAt      time.Time `gorm:"column:expires_at;not null;index"`
}

func (notificationRow) TableName() string { return "notifications" }

type adminRoleRow struct {
	Email            string         `gorm:"column:email;primaryKey"`
	Role             string         `gorm:"column:role;not null"`
	AssignedProjects pq.StringArray `gorm:"column:assigned_projects;type:text[]"`
	CreatedBy        string         `gorm:"column:created_by"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
}

func (adminRoleRow) TableName() string { return "admin_roles" }

func (row *adminRoleRow) toModel() *model.AdminRole {
	return &model.AdminRole{
		Email:            row.Email,
		Role:             model.AdminRoleType(row.Role),
		AssignedProjects: append([]string{}, row.AssignedProjects...),
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt.UTC(),
	}
}
