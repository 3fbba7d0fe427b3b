// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Actions recorded in the lifecycle audit trail.
const (
	ActionSubmit        = "request.submit"
	ActionApprove       = "request.approve"
	ActionReject        = "request.reject"
	ActionGrantIssued   = "grant.issue"
	ActionRevoke        = "grant.revoke"
	ActionRoleBind      = "grant.bind"
	ActionRoleUnbind    = "grant.unbind"
	ActionAdminAssigned = "admin.assign"
	ActionAdminRemoved  = "admin.remove"
)

type AuditLog struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	RequestID  string          `json:"request_id,omitempty"`
	GrantID    string          `json:"grant_id,omitempty"`
	ProjectID  string          `json:"project_id,omitempty"`
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status,omitempty"`
	Success    bool            `json:"success"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Query narrows QueryLogs. Empty fields are not filtered on.
type Query struct {
	From      time.Time
	To        time.Time
	Actor     string
	RequestID string
	GrantID   string
	Size      int
}
