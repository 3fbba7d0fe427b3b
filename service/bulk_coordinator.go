// service/bulk_coordinator.go
package service

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

// BulkActionCoordinator applies one action to many requests. Each item is
// isolated: a failure is recorded and the batch carries on.
type BulkActionCoordinator struct {
	engine   *ConsensusEngine
	eventBus *util.EventBus
}

func NewBulkActionCoordinator(engine *ConsensusEngine, eventBus *util.EventBus) *BulkActionCoordinator {
	return &BulkActionCoordinator{engine: engine, eventBus: eventBus}
}

func (b *BulkActionCoordinator) BulkApprove(ctx context.Context, requestIDs []string, approverEmail string) *model.BulkResult {
	return b.run(ctx, model.BulkApprove, requestIDs, approverEmail, func(id string) error {
		_, err := b.engine.Approve(ctx, id, approverEmail)
		return err
	})
}

func (b *BulkActionCoordinator) BulkReject(ctx context.Context, requestIDs []string, approverEmail, reason string) *model.BulkResult {
	return b.run(ctx, model.BulkReject, requestIDs, approverEmail, func(id string) error {
		_, err := b.engine.Reject(ctx, id, approverEmail, reason)
		return err
	})
}

func (b *BulkActionCoordinator) run(ctx context.Context, action model.BulkAction, requestIDs []string, actor string, apply func(string) error) *model.BulkResult {
	result := &model.BulkResult{
		Action: action,
		Items:  make([]model.BulkItemResult, 0, len(requestIDs)),
	}

	for _, id := range requestIDs {
		item := model.BulkItemResult{ID: id}
		if err := apply(id); err != nil {
			item.Err = err
			item.Error = err.Error()
			result.Failed++
		} else {
			item.OK = true
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	logger.FromContext(ctx).Info("Bulk action completed",
		zap.String("action", string(action)),
		zap.String("actor", actor),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	if result.Succeeded > 0 && b.eventBus != nil {
		b.eventBus.Publish(ctx, EventBulkCompleted, BulkCompleted{Result: result, Actor: model.NormalizeEmail(actor)})
	}
	return result
}
