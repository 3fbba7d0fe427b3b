// service/role_binder.go
package service

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
)

// RoleBinder applies a grant to the cloud IAM system.
type RoleBinder interface {
	Bind(ctx context.Context, grant *model.GrantedAccess) error
	Unbind(ctx context.Context, grant *model.GrantedAccess) error
}

// LoggingRoleBinder records the intended assignment without calling out.
type LoggingRoleBinder struct{}

func NewLoggingRoleBinder() *LoggingRoleBinder {
	return &LoggingRoleBinder{}
}

func (LoggingRoleBinder) Bind(ctx context.Context, grant *model.GrantedAccess) error {
	logger.Info("ROLE BINDING: add",
		zap.String("member", "user:"+grant.UserEmail),
		zap.String("role", grant.Role),
		zap.String("projectID", grant.GCPProjectID),
		zap.String("asset", grant.AssetName))
	return nil
}

func (LoggingRoleBinder) Unbind(ctx context.Context, grant *model.GrantedAccess) error {
	logger.Info("ROLE BINDING: remove",
		zap.String("member", "user:"+grant.UserEmail),
		zap.String("role", grant.Role),
		zap.String("projectID", grant.GCPProjectID),
		zap.String("asset", grant.AssetName))
	return nil
}
