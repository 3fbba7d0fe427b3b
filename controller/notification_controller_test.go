// controller/notification_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dev-mohitbeniwal/grantflow/controller"
	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
	mock_service "github.com/dev-mohitbeniwal/grantflow/test/service_mock"
)

func TestNotificationController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNotificationService := mock_service.NewMockINotificationService(ctrl)
	router, api := setupRouter(true)
	controller.NewNotificationController(mockNotificationService).RegisterRoutes(api)

	t.Run("ListNotifications_UnreadOnly", func(t *testing.T) {
		mockNotificationService.EXPECT().
			ListNotifications(gomock.Any(), actor, true, model.DefaultPageSize, 0).
			Return([]*model.Notification{{ID: "n1", RecipientEmail: actor, Type: model.NotificationNewRequest}}, nil)

		w := perform(router, "GET", "/notifications?unread=true", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UnreadCount", func(t *testing.T) {
		mockNotificationService.EXPECT().
			UnreadCount(gomock.Any(), actor).
			Return(3, nil)

		w := perform(router, "GET", "/notifications/unread-count", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var got map[string]int
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 3, got["count"])
	})

	t.Run("MarkRead_NotFound", func(t *testing.T) {
		mockNotificationService.EXPECT().
			MarkRead(gomock.Any(), actor, "n9").
			Return(grant_errors.ErrNotificationNotFound)

		w := perform(router, "POST", "/notifications/n9/read", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		mockNotificationService.EXPECT().
			MarkAllRead(gomock.Any(), actor).
			Return(2, nil)

		w := perform(router, "POST", "/notifications/read-all", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"updated":2}`, w.Body.String())
	})
}
