// dao/notification_dao.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	grant_neo4j "github.com/dev-mohitbeniwal/grantflow/model/neo4j"
)

type NotificationDAO struct {
	Driver neo4j.DriverWithContext
}

var _ NotificationStore = &NotificationDAO{}

func NewNotificationDAO(driver neo4j.DriverWithContext) *NotificationDAO {
	return &NotificationDAO{Driver: driver}
}

func (dao *NotificationDAO) EnsureUniqueConstraint(ctx context.Context) error {
	return ensureConstraint(ctx, dao.Driver, "unique_notification_id", `
        CREATE CONSTRAINT unique_notification_id IF NOT EXISTS
        FOR (n:`+grant_neo4j.LabelNotification+`) REQUIRE n.id IS UNIQUE
        `)
}

func (dao *NotificationDAO) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	// Neo4j properties cannot hold maps, so metadata travels as JSON.
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return grant_errors.Validation(grant_errors.ErrInvalidRequestData, "notification metadata: "+err.Error())
	}

	_, err = executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        CREATE (n:` + grant_neo4j.LabelNotification + `)
        SET n = $props
        `
		res, err := tx.Run(ctx, query, map[string]any{"props": map[string]any{
			grant_neo4j.AttrID:             n.ID,
			grant_neo4j.AttrRecipientEmail: n.RecipientEmail,
			grant_neo4j.AttrType:           string(n.Type),
			grant_neo4j.AttrTitle:          n.Title,
			grant_neo4j.AttrMessage:        n.Message,
			grant_neo4j.AttrMetadata:       string(metadata),
			grant_neo4j.AttrRead:           n.Read,
			grant_neo4j.AttrCreatedAt:      n.CreatedAt.UTC(),
			grant_neo4j.AttrExpiresAt:      n.ExpiresAt.UTC(),
		}})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to create notification", zap.Error(err), zap.String("recipient", n.RecipientEmail))
		return grant_errors.Database("create notification", err)
	}
	logger.Debug("Notification stored", zap.String("notificationID", n.ID), zap.String("type", string(n.Type)))
	return nil
}

func (dao *NotificationDAO) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error) {
	limit, offset := model.ClampPage(filter.Limit, filter.Offset)
	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (n:` + grant_neo4j.LabelNotification + ` {recipientEmail: $recipient})
        WHERE (NOT $unreadOnly OR n.read = false)
          AND ($now IS NULL OR n.expiresAt > $now)
        RETURN n
        ORDER BY n.createdAt DESC
        SKIP $offset
        LIMIT $limit
        `
		var now any
		if !filter.Now.IsZero() {
			now = filter.Now.UTC()
		}
		res, err := tx.Run(ctx, query, map[string]any{
			"recipient":  filter.RecipientEmail,
			"unreadOnly": filter.UnreadOnly,
			"now":        now,
			"offset":     offset,
			"limit":      limit,
		})
		if err != nil {
			return nil, err
		}
		nodes, err := collectNodes(ctx, res, "n")
		if err != nil {
			return nil, err
		}
		out := make([]*model.Notification, 0, len(nodes))
		for _, node := range nodes {
			n, err := mapNodeToNotification(node)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	})
	if err != nil {
		logger.Error("Failed to list notifications", zap.Error(err), zap.String("recipient", filter.RecipientEmail))
		return nil, grant_errors.Database("list notifications", err)
	}
	return result.([]*model.Notification), nil
}

func (dao *NotificationDAO) CountUnread(ctx context.Context, recipientEmail string, now time.Time) (int, error) {
	result, err := executeRead(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (n:` + grant_neo4j.LabelNotification + ` {recipientEmail: $recipient})
        WHERE n.read = false AND n.expiresAt > $now
        RETURN count(n) AS unread
        `
		return singleCount(ctx, tx, query, map[string]any{"recipient": recipientEmail, "now": now.UTC()}, "unread")
	})
	if err != nil {
		logger.Error("Failed to count unread notifications", zap.Error(err), zap.String("recipient", recipientEmail))
		return 0, grant_errors.Database("count unread notifications", err)
	}
	return result.(int), nil
}

func (dao *NotificationDAO) MarkRead(ctx context.Context, recipientEmail, notificationID string) error {
	_, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (n:` + grant_neo4j.LabelNotification + ` {id: $id, recipientEmail: $recipient})
        SET n.read = true
        RETURN count(n) AS updated
        `
		updated, err := singleCount(ctx, tx, query, map[string]any{"id": notificationID, "recipient": recipientEmail}, "updated")
		if err != nil {
			return nil, err
		}
		if updated == 0 {
			return nil, grant_errors.ErrNotificationNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, grant_errors.ErrNotificationNotFound) {
			return err
		}
		logger.Error("Failed to mark notification read", zap.Error(err), zap.String("notificationID", notificationID))
		return grant_errors.Database("mark notification read", err)
	}
	return nil
}

func (dao *NotificationDAO) MarkAllRead(ctx context.Context, recipientEmail string) (int, error) {
	result, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (n:` + grant_neo4j.LabelNotification + ` {recipientEmail: $recipient})
        WHERE n.read = false
        SET n.read = true
        RETURN count(n) AS updated
        `
		return singleCount(ctx, tx, query, map[string]any{"recipient": recipientEmail}, "updated")
	})
	if err != nil {
		logger.Error("Failed to mark all notifications read", zap.Error(err), zap.String("recipient", recipientEmail))
		return 0, grant_errors.Database("mark all notifications read", err)
	}
	return result.(int), nil
}

func (dao *NotificationDAO) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	start := time.Now()
	result, err := executeWrite(ctx, dao.Driver, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
        MATCH (n:` + grant_neo4j.LabelNotification + `)
        WHERE n.expiresAt <= $now
        WITH n, n.id AS id
        DELETE n
        RETURN count(id) AS deleted
        `
		return singleCount(ctx, tx, query, map[string]any{"now": now.UTC()}, "deleted")
	})
	if err != nil {
		logger.Error("Failed to purge expired notifications", zap.Error(err))
		return 0, grant_errors.Database("delete expired notifications", err)
	}
	logger.Info("Expired notifications purged", zap.Int("deleted", result.(int)), zap.Duration("duration", time.Since(start)))
	return result.(int), nil
}

func singleCount(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any, key string) (int, error) {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	record, err := res.Single(ctx)
	if err != nil {
		return 0, err
	}
	value, _ := record.Get(key)
	count, _ := value.(int64)
	return int(count), nil
}

func mapNodeToNotification(node neo4j.Node) (*model.Notification, error) {
	props := node.Props
	id, err := requireString(props, grant_neo4j.AttrID)
	if err != nil {
		return nil, err
	}
	n := &model.Notification{
		ID:             id,
		RecipientEmail: propString(props, grant_neo4j.AttrRecipientEmail),
		Type:           model.NotificationType(propString(props, grant_neo4j.AttrType)),
		Title:          propString(props, grant_neo4j.AttrTitle),
		Message:        propString(props, grant_neo4j.AttrMessage),
		Read:           propBool(props, grant_neo4j.AttrRead),
		CreatedAt:      propTime(props, grant_neo4j.AttrCreatedAt),
		ExpiresAt:      propTime(props, grant_neo4j.AttrExpiresAt),
	}
	if raw := propString(props, grant_neo4j.AttrMetadata); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &n.Metadata); err != nil {
			return nil, err
		}
	}
	return n, nil
}
