// model/access_request.go
package model

import (
	"strings"
	"time"
)

type AccessRequest struct {
	ID             string        `json:"id"`
	RequesterEmail string        `json:"requesterEmail"`
	AssetName      string        `json:"assetName"`
	GCPProjectID   string        `json:"gcpProjectId"`
	RequestedRole  string        `json:"requestedRole"`
	Justification  string        `json:"justification,omitempty"`
	Status         RequestStatus `json:"status"`
	Approvals      []string      `json:"approvals"`
	AdminNote      string        `json:"adminNote,omitempty"`
	ReviewedBy     string        `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time    `json:"reviewedAt,omitempty"`
	// GrantID is the grant issued for an APPROVED request and outlives its
	// revocation. APPROVED with an empty GrantID means issuance has not completed.
	GrantID     string    `json:"grantId,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// Version increments on every persisted mutation and is the
	// precondition for compare-and-set updates.
	Version int64 `json:"version"`
}

// HasApproval reports whether approver already voted on this request.
func (r *AccessRequest) HasApproval(approver string) bool {
	for _, a := range r.Approvals {
		if a == approver {
			return true
		}
	}
	return false
}

// AwaitingGrant reports whether the request reached APPROVED but its grant
// has not been issued yet.
func (r *AccessRequest) AwaitingGrant() bool {
	return r.Status == StatusApproved && r.GrantID == ""
}

// Clone returns a deep copy so callers can mutate without touching a stored value.
func (r *AccessRequest) Clone() *AccessRequest {
	cp := *r
	cp.Approvals = append([]string{}, r.Approvals...)
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		cp.ReviewedAt = &t
	}
	return &cp
}

// GrantKey is the natural key of the (user, asset, role) tuple.
func (r *AccessRequest) GrantKey() string {
	return GrantKey(r.RequesterEmail, r.AssetName, r.RequestedRole)
}

// SubmitRequestInput is the caller payload for a new access request.
type SubmitRequestInput struct {
	ID             string   `json:"id,omitempty" validate:"omitempty,max=128"`
	RequesterEmail string   `json:"requesterEmail" validate:"required,email"`
	AssetName      string   `json:"assetName" validate:"required,max=512"`
	GCPProjectID   string   `json:"gcpProjectId" validate:"required,max=256"`
	RequestedRole  string   `json:"requestedRole" validate:"required,max=256"`
	Justification  string   `json:"justification,omitempty" validate:"max=2000"`
	ApproverList   []string `json:"approverList,omitempty" validate:"dive,email"`
}

// NormalizeEmail lower-cases and trims an identity so votes and grant tuples
// compare equal regardless of how the caller typed them.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
