// model/status.go
package model

// RequestStatus is the lifecycle state of an AccessRequest.
type RequestStatus string

const (
	StatusPending           RequestStatus = "PENDING"
	StatusPartiallyApproved RequestStatus = "PARTIALLY_APPROVED"
	StatusApproved          RequestStatus = "APPROVED"
	StatusRejected          RequestStatus = "REJECTED"
	StatusRevoked           RequestStatus = "REVOKED"
)

// requestTransitions is the complete set of permitted forward moves.
// Anything absent from this table is a conflict.
var requestTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:           {StatusPartiallyApproved, StatusApproved, StatusRejected},
	StatusPartiallyApproved: {StatusPartiallyApproved, StatusApproved, StatusRejected},
	StatusApproved:          {StatusRevoked},
}

// CanTransitionTo reports whether the table allows moving from s to next.
// PARTIALLY_APPROVED -> PARTIALLY_APPROVED covers an extra vote that still
// leaves the request short of quorum.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal is true once no further approval or rejection may be applied.
func (s RequestStatus) IsFinal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusRevoked:
		return true
	}
	return false
}

// IsKnown is false for values read from storage that this build does not
// recognise. Such values are shown as-is but never used as a transition target.
func (s RequestStatus) IsKnown() bool {
	switch s {
	case StatusPending, StatusPartiallyApproved, StatusApproved, StatusRejected, StatusRevoked:
		return true
	}
	return false
}

// GrantStatus is the state of a GrantedAccess record.
type GrantStatus string

const (
	GrantActive  GrantStatus = "ACTIVE"
	GrantRevoked GrantStatus = "REVOKED"
)

func (s GrantStatus) IsKnown() bool {
	return s == GrantActive || s == GrantRevoked
}

// AdminRoleType is the role held in the admin directory.
type AdminRoleType string

const (
	RoleNone         AdminRoleType = ""
	RoleProjectAdmin AdminRoleType = "project-admin"
	RoleSuperAdmin   AdminRoleType = "super-admin"
)

func (r AdminRoleType) IsKnown() bool {
	return r == RoleProjectAdmin || r == RoleSuperAdmin
}
