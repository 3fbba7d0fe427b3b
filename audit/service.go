// audit/service.go
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
)

type Service interface {
	LogAction(ctx context.Context, log AuditLog) error
	QueryLogs(ctx context.Context, q Query) ([]AuditLog, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wraps repo. A nil repo keeps the trail in the application log only.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) LogAction(ctx context.Context, log AuditLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now().UTC()
	}
	logger.Info("AUDIT",
		zap.String("action", log.Action),
		zap.String("actor", log.Actor),
		zap.String("requestID", log.RequestID),
		zap.String("grantID", log.GrantID),
		zap.String("from", log.FromStatus),
		zap.String("to", log.ToStatus),
		zap.Bool("success", log.Success))
	if s.repo == nil {
		return nil
	}
	return s.repo.LogAction(ctx, log)
}

func (s *service) QueryLogs(ctx context.Context, q Query) ([]AuditLog, error) {
	if s.repo == nil {
		return []AuditLog{}, nil
	}
	return s.repo.QueryLogs(ctx, q)
}
