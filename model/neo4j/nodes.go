// model/neo4j/nodes.go
package grant_neo4j

// Node Labels
const (
	// LabelAccessRequest represents a user's request for a role on an asset
	LabelAccessRequest = "AccessRequest"

	// LabelGrantedAccess represents an issued, revocable grant
	LabelGrantedAccess = "GrantedAccess"

	// LabelNotification represents an inbox entry for a recipient
	LabelNotification = "Notification"

	LabelAdminRole = "AdminRole"
)

// Relationship Types
const (
	// RelIssuedFrom links a grant to the request that first produced it.
	// Lookup only: nothing traverses it when revoking.
	RelIssuedFrom = "ISSUED_FROM"
)
