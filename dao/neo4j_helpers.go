// dao/neo4j_helpers.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

func executeWrite(ctx context.Context, driver neo4j.DriverWithContext, work neo4j.ManagedTransactionWork) (any, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

func executeRead(ctx context.Context, driver neo4j.DriverWithContext, work neo4j.ManagedTransactionWork) (any, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

// ensureConstraint runs an idempotent CREATE CONSTRAINT ... IF NOT EXISTS.
func ensureConstraint(ctx context.Context, driver neo4j.DriverWithContext, name, query string) error {
	logger.Info("Ensuring constraint", zap.String("constraint", name))
	_, err := executeWrite(ctx, driver, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure constraint", zap.String("constraint", name), zap.Error(err))
		return err
	}
	logger.Info("Successfully ensured constraint", zap.String("constraint", name))
	return nil
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolation
}

// collectNodes reads every record's value under key as a node.
func collectNodes(ctx context.Context, result neo4j.ResultWithContext, key string) ([]neo4j.Node, error) {
	var nodes []neo4j.Node
	for result.Next(ctx) {
		value, ok := result.Record().Get(key)
		if !ok {
			return nil, fmt.Errorf("record has no %q column", key)
		}
		node, ok := value.(neo4j.Node)
		if !ok {
			return nil, fmt.Errorf("column %q is %T, not a node", key, value)
		}
		nodes = append(nodes, node)
	}
	return nodes, result.Err()
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func requireString(props map[string]any, key string) (string, error) {
	s, ok := props[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("invalid or missing '%s' property", key)
	}
	return s, nil
}

func propInt64(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func propBool(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

func propTime(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func propTimePtr(props map[string]any, key string) *time.Time {
	if _, ok := props[key]; !ok {
		return nil
	}
	t := propTime(props, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// propStrings decodes a list property. Neo4j hands lists back as []any.
func propStrings(props map[string]any, key string) []string {
	switch v := props[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// nullableTime maps an unset pointer to nil so SET removes the property.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
