// model/neo4j/attributes.go
package grant_neo4j

// Attribute Keys
const (
	AttrID        = "id"
	AttrStatus    = "status"
	AttrVersion   = "version"
	AttrCreatedAt = "createdAt"
	AttrUpdatedAt = "updatedAt"

	AttrRequesterEmail = "requesterEmail"
	AttrAssetName      = "assetName"
	AttrProjectID      = "gcpProjectId"
	AttrRequestedRole  = "requestedRole"
	AttrJustification  = "justification"
	AttrApprovals      = "approvals"
	AttrAdminNote      = "adminNote"
	AttrReviewedBy     = "reviewedBy"
	AttrReviewedAt     = "reviewedAt"
	AttrGrantID        = "grantId"
	AttrSubmittedAt    = "submittedAt"

	AttrUserEmail         = "userEmail"
	AttrRole              = "role"
	AttrGrantedAt         = "grantedAt"
	AttrGrantedBy         = "grantedBy"
	AttrOriginalRequestID = "originalRequestId"
	AttrRevokedAt         = "revokedAt"
	AttrRevokedBy         = "revokedBy"
	// AttrActiveKey is set only while a grant is ACTIVE. A uniqueness
	// constraint on it enforces one ACTIVE grant per tuple.
	AttrActiveKey = "activeKey"

	AttrRecipientEmail = "recipientEmail"
	AttrType           = "type"
	AttrTitle          = "title"
	AttrMessage        = "message"
	AttrMetadata       = "metadata"
	AttrRead           = "read"
	AttrExpiresAt      = "expiresAt"

	AttrEmail            = "email"
	AttrAssignedProjects = "assignedProjects"
	AttrCreatedBy        = "createdBy"
)
