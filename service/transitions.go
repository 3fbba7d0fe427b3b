// service/transitions.go
package service

import (
	"time"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// statusForApprovals derives request status from the vote count.
func statusForApprovals(count, required int) model.RequestStatus {
	switch {
	case count >= required:
		return model.StatusApproved
	case count > 0:
		return model.StatusPartiallyApproved
	default:
		return model.StatusPending
	}
}

// applyApproval returns the next state of req after approver votes. req is
// not modified.
func applyApproval(req *model.AccessRequest, approver string, required int, now time.Time) (*model.AccessRequest, error) {
	if req.Status.IsFinal() {
		return nil, grant_errors.ErrRequestFinalized
	}
	if req.HasApproval(approver) {
		return nil, grant_errors.ErrDuplicateApproval
	}

	next := req.Clone()
	next.Approvals = append(next.Approvals, approver)
	status := statusForApprovals(len(next.Approvals), required)
	if !req.Status.CanTransitionTo(status) {
		return nil, grant_errors.ErrInvalidTransition
	}
	next.Status = status
	next.UpdatedAt = now
	if status == model.StatusApproved {
		reviewedAt := now
		next.ReviewedBy = approver
		next.ReviewedAt = &reviewedAt
	}
	return next, nil
}

// applyRejection returns req moved to REJECTED. Approvals are kept as history.
func applyRejection(req *model.AccessRequest, reviewer, reason string, now time.Time) (*model.AccessRequest, error) {
	if req.Status.IsFinal() {
		return nil, grant_errors.ErrRequestFinalized
	}
	if !req.Status.CanTransitionTo(model.StatusRejected) {
		return nil, grant_errors.ErrInvalidTransition
	}

	next := req.Clone()
	reviewedAt := now
	next.Status = model.StatusRejected
	next.AdminNote = reason
	next.ReviewedBy = reviewer
	next.ReviewedAt = &reviewedAt
	next.UpdatedAt = now
	return next, nil
}
