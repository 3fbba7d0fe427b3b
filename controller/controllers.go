// controller/controllers.go
package controller

import "github.com/dev-mohitbeniwal/grantflow/service"

type Controllers struct {
	Access       *AccessController
	Admin        *AdminController
	Notification *NotificationController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Access:       NewAccessController(services.Access),
		Admin:        NewAdminController(services.Admin),
		Notification: NewNotificationController(services.Notification),
	}
}
