// model/notification.go
package model

import "time"

type NotificationType string

const (
	NotificationRequestApproved NotificationType = "request-approved"
	NotificationRequestRejected NotificationType = "request-rejected"
	NotificationAccessRevoked   NotificationType = "access-revoked"
	NotificationNewRequest      NotificationType = "new-request"
	NotificationBulkAction      NotificationType = "bulk-action"
)

// Metadata keys used by the dispatcher.
const (
	MetaRequestID = "requestId"
	MetaGrantID   = "grantId"
	MetaAssetName = "assetName"
	MetaProjectID = "projectId"
	MetaRole      = "role"
	MetaActor     = "actor"
	MetaApprovals = "approvals"
	MetaRequired  = "required"
	MetaCount     = "count"
	MetaAction    = "action"
)

type Notification struct {
	ID             string            `json:"id"`
	RecipientEmail string            `json:"recipientEmail"`
	Type           NotificationType  `json:"type"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Read           bool              `json:"read"`
	CreatedAt      time.Time         `json:"createdAt"`
	ExpiresAt      time.Time         `json:"expiresAt"`
}

func (n *Notification) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

type NotificationFilter struct {
	RecipientEmail string
	UnreadOnly     bool
	// Now excludes notifications whose ExpiresAt has elapsed. Zero disables the check.
	Now    time.Time
	Limit  int
	Offset int
}
