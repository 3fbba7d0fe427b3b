// model/granted_access.go
package model

import (
	"fmt"
	"time"
)

type GrantedAccess struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"userEmail"`
	AssetName    string    `json:"assetName"`
	GCPProjectID string    `json:"gcpProjectId"`
	Role         string    `json:"role"`
	GrantedAt    time.Time `json:"grantedAt"`
	GrantedBy    string    `json:"grantedBy"`
	// OriginalRequestID points at the request that first produced this grant.
	// It is a lookup reference only; revocation never follows it.
	OriginalRequestID string      `json:"originalRequestId"`
	Status            GrantStatus `json:"status"`
	RevokedAt         *time.Time  `json:"revokedAt,omitempty"`
	RevokedBy         string      `json:"revokedBy,omitempty"`
}

func (g *GrantedAccess) Key() string {
	return GrantKey(g.UserEmail, g.AssetName, g.Role)
}

func (g *GrantedAccess) Clone() *GrantedAccess {
	cp := *g
	if g.RevokedAt != nil {
		t := *g.RevokedAt
		cp.RevokedAt = &t
	}
	return &cp
}

// GrantKey encodes the uniqueness tuple for ACTIVE grants. Each field is
// length-prefixed so separators inside asset or role names cannot make two
// tuples share a key.
func GrantKey(userEmail, assetName, role string) string {
	return fmt.Sprintf("%d:%s|%d:%s|%d:%s", len(userEmail), userEmail, len(assetName), assetName, len(role), role)
}

// GrantRequest carries everything needed to issue a grant.
type GrantRequest struct {
	UserEmail string
	AssetName string
	ProjectID string
	Role      string
	RequestID string
	GrantedBy string
	GrantedAt time.Time
}
