// service/events.go
package service

import "github.com/dev-mohitbeniwal/grantflow/model"

// Lifecycle events published after a command has committed.
const (
	EventRequestSubmitted         = "request.submitted"
	EventRequestPartiallyApproved = "request.partially_approved"
	EventRequestApproved          = "request.approved"
	EventRequestRejected          = "request.rejected"
	EventGrantRevoked             = "grant.revoked"
	EventBulkCompleted            = "bulk.completed"
)

type RequestSubmitted struct {
	Request    *model.AccessRequest
	Recipients []string
}

type RequestPartiallyApproved struct {
	Request  *model.AccessRequest
	Approver string
	Required int
}

type RequestApproved struct {
	Request *model.AccessRequest
	Grant   *model.GrantedAccess
	// GrantCreated is false when an ACTIVE grant for the tuple already existed.
	GrantCreated bool
}

type RequestRejected struct {
	Request    *model.AccessRequest
	FromStatus model.RequestStatus
}

type GrantRevoked struct {
	Grant *model.GrantedAccess
}

type BulkCompleted struct {
	Result *model.BulkResult
	Actor  string
}
