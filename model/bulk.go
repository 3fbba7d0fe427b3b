// model/bulk.go
package model

type BulkAction string

const (
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
)

type BulkItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

type BulkResult struct {
	Action    BulkAction       `json:"action"`
	Items     []BulkItemResult `json:"items"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

type BulkRequestInput struct {
	RequestIDs []string `json:"requestIds" validate:"required,min=1,max=500,dive,required"`
	Reason     string   `json:"reason,omitempty" validate:"max=2000"`
}

type RejectInput struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}
