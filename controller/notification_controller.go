// controller/notification_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/grantflow/service"
	"github.com/dev-mohitbeniwal/grantflow/util"
	helper_util "github.com/dev-mohitbeniwal/grantflow/util/helper"
)

// NotificationController serves the caller's own inbox.
type NotificationController struct {
	notificationService service.INotificationService
}

func NewNotificationController(notificationService service.INotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

func (nc *NotificationController) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", nc.ListNotifications)
		notifications.GET("/unread-count", nc.UnreadCount)
		notifications.POST("/:id/read", nc.MarkRead)
		notifications.POST("/read-all", nc.MarkAllRead)
	}
}

func (nc *NotificationController) ListNotifications(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	notifications, err := nc.notificationService.ListNotifications(c.Request.Context(), actor, c.Query("unread") == "true", limit, offset)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (nc *NotificationController) UnreadCount(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	count, err := nc.notificationService.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	if err := nc.notificationService.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	updated, err := nc.notificationService.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
