// service/services.go
package service

import (
	"github.com/dev-mohitbeniwal/grantflow/audit"
	"github.com/dev-mohitbeniwal/grantflow/dao"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type Services struct {
	Access       IAccessService
	Admin        IAdminService
	Notification INotificationService

	Directory *AdminDirectory
	Engine    *ConsensusEngine
}

// Dependencies is everything InitializeServices needs, constructed once by main.
type Dependencies struct {
	Stores         dao.Stores
	RoleCache      RoleCache
	Locker         util.Locker
	Notifier       Notifier
	AuditService   audit.Service
	RoleBinder     RoleBinder
	ValidationUtil *util.ValidationUtil
	EventBus       *util.EventBus
	Engine         EngineConfig
}

func InitializeServices(deps Dependencies) (*Services, error) {
	validationUtil := deps.ValidationUtil
	if validationUtil == nil {
		validationUtil = util.NewValidationUtil()
	}

	directory := NewAdminDirectory(deps.Stores.Admins, deps.RoleCache)
	engine := NewConsensusEngine(deps.Stores.Requests, deps.Stores.Grants, directory, deps.Locker, deps.EventBus, deps.Engine)
	bulk := NewBulkActionCoordinator(engine, deps.EventBus)
	admin := NewAdminService(deps.Stores.Admins, directory, validationUtil, deps.AuditService)

	if deps.EventBus != nil && deps.Notifier != nil {
		NewLifecycleEffects(deps.Notifier, deps.AuditService, deps.RoleBinder).Register(deps.EventBus)
	}

	services := &Services{
		Access:       NewAccessService(deps.Stores.Requests, deps.Stores.Grants, engine, bulk, admin, validationUtil, deps.EventBus),
		Admin:        admin,
		Notification: NewNotificationService(deps.Stores.Notifications),
		Directory:    directory,
		Engine:       engine,
	}

	return services, nil
}
