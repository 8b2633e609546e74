package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestao-gruas/internal/dto"
	"gestao-gruas/internal/model"
	"gestao-gruas/internal/repository"
)

// ── 通知模块业务错误 ──

var (
	ErrTitleRequired        = errors.New("通知标题不能为空")
	ErrMessageRequired      = errors.New("通知内容不能为空")
	ErrInvalidCategory      = errors.New("通知类别不合法")
	ErrInvalidDestKind      = errors.New("定向类型不合法")
	ErrNoValidRecipients    = errors.New("未找到有效收件人")
	ErrNotificationNotFound = errors.New("通知不存在或无权操作")
	ErrViewerNotFound       = errors.New("账号不存在")
)

// Broadcaster 实时推送接口（尽力而为，不在线即跳过）
type Broadcaster interface {
	Push(accountIDs []int64, payload interface{})
}

// PushPayload 实时推送载荷
type PushPayload struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Message      string                `json:"message"`
	Category     string                `json:"category"`
	Link         string                `json:"link,omitempty"`
	Read         bool                  `json:"read"`
	Timestamp    time.Time             `json:"timestamp"`
	Origin       string                `json:"origin"`
	Destinations model.DestinationList `json:"destinations"`
}

// NotificationService 通知业务接口
//
// Create 的同步路径止于批量落库 + 实时推送；WhatsApp 副通道投递由独立
// goroutine 承担，响应不等待，失败只记日志不回传。
type NotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest, creatorName string) (*dto.CreateNotificationResponse, error)
	List(ctx context.Context, viewerID int64, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	ListUnread(ctx context.Context, viewerID int64) ([]dto.NotificationResponse, error)
	CountUnread(ctx context.Context, viewerID int64) (int64, error)
	MarkRead(ctx context.Context, id string, viewerID int64) error
	MarkAllRead(ctx context.Context, viewerID int64) (int64, error)
	Delete(ctx context.Context, id string, viewerID int64) error
	DeleteAll(ctx context.Context, viewerID int64) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	hub    Broadcaster
	sender SecondarySender // nil 表示副通道未启用
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(
	repo *repository.Repository,
	hub Broadcaster,
	sender SecondarySender,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:   repo,
		hub:    hub,
		sender: sender,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest, creatorName string) (*dto.CreateNotificationResponse, error) {
	// 1. 校验载荷（binding 之外再做一层语义校验）
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageRequired
	}
	if !model.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	dests := make(model.DestinationList, 0, len(req.Destinations))
	for _, d := range req.Destinations {
		if !model.ValidDestKind(d.Kind) {
			return nil, ErrInvalidDestKind
		}
		dests = append(dests, model.DestinationRef{
			Kind:  d.Kind,
			ID:    d.ID,
			Label: d.Label,
			Info:  d.Info,
		})
	}

	// 2. 解析收件人
	recipients, broadcast, err := s.resolveRecipients(ctx, dests)
	if err != nil {
		return nil, err
	}
	// 广播可以合法地命中零个活跃账号；非广播定向解析为空则是错误
	if len(recipients) == 0 && !broadcast {
		return nil, ErrNoValidRecipients
	}

	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = creatorName
	}
	if origin == "" {
		origin = "Sistema"
	}

	// 3. 按收件人扇出投递行，单次批量写入（持久化即视为送达存储）
	now := time.Now()
	rows := make([]*model.Notification, 0, len(recipients))
	for _, rid := range recipients {
		rows = append(rows, &model.Notification{
			ID:           uuid.New().String(),
			Title:        req.Title,
			Message:      req.Message,
			Category:     req.Category,
			Link:         req.Link,
			Icon:         req.Icon,
			Destinations: dests,
			Origin:       origin,
			RecipientID:  rid,
			Read:         false,
			CreatedAt:    now,
		})
	}

	if err := s.repo.Notification.CreateBatch(ctx, rows); err != nil {
		s.logger.Error("批量写入通知失败", zap.Int("recipients", len(rows)), zap.Error(err))
		return nil, err
	}

	// 4. 同步实时推送（每条投递一次，不在线不算失败）
	for _, row := range rows {
		s.hub.Push([]int64{row.RecipientID}, PushPayload{
			ID:           row.ID,
			Title:        row.Title,
			Message:      row.Message,
			Category:     row.Category,
			Link:         row.Link,
			Read:         false,
			Timestamp:    row.CreatedAt,
			Origin:       row.Origin,
			Destinations: row.Destinations,
		})
	}

	// 5. 副通道投递脱离响应路径执行；请求上下文随响应结束，这里换用独立上下文
	go s.dispatchSecondary(context.Background(), rows)

	s.logger.Info("通知创建完成",
		zap.Int("recipients", len(rows)),
		zap.Bool("broadcast", broadcast),
		zap.String("category", req.Category),
	)

	return &dto.CreateNotificationResponse{RecipientCount: len(rows)}, nil
}

// resolveRecipients 将定向列表解析为去重后的账号 ID 集合
// 返回的 broadcast 标记区分“广播命中零人”与“定向解析失败”
func (s *notificationService) resolveRecipients(ctx context.Context, dests model.DestinationList) ([]int64, bool, error) {
	// 空列表或含广播条目 → 全体活跃账号，忽略其余条目
	if len(dests) == 0 || dests.HasBroadcast() {
		ids, err := s.repo.Directory.ListActiveAccountIDs(ctx)
		if err != nil {
			return nil, true, err
		}
		return ids, true, nil
	}

	seen := make(map[int64]bool)
	var out []int64

	for _, ref := range dests {
		refID := parseIntOrZero(strings.TrimSpace(ref.ID))
		if refID == 0 {
			// 引用 ID 缺失或不可解析：该条目不产生收件人，也不报错
			continue
		}

		var (
			accountID *int64
			err       error
		)
		switch ref.Kind {
		case model.DestOrganization:
			accountID, err = s.repo.Directory.ResolveOrganizationContact(ctx, refID)
		case model.DestEmployee:
			accountID, err = s.repo.Directory.ResolveEmployeeAccount(ctx, refID)
		case model.DestSite:
			accountID, err = s.repo.Directory.ResolveSiteResponsible(ctx, refID)
		default:
			return nil, false, ErrInvalidDestKind
		}
		if err != nil {
			return nil, false, err
		}

		if accountID != nil && !seen[*accountID] {
			seen[*accountID] = true
			out = append(out, *accountID)
		}
	}

	return out, false, nil
}

// ────────────────────── 副通道投递 ──────────────────────

// dispatchSecondary 按收件人逐条尝试 WhatsApp 投递
// 每条的失败（含 panic）就地吞掉并记录，绝不影响其余收件人，也不回传给创建方
func (s *notificationService) dispatchSecondary(ctx context.Context, rows []*model.Notification) {
	if s.sender == nil {
		return
	}

	var sent, skipped, failed int
	for _, row := range rows {
		ok, err := s.sendSecondaryOne(ctx, row)
		switch {
		case err != nil:
			failed++
			s.logger.Warn("副通道投递失败",
				zap.Int64("recipient_id", row.RecipientID),
				zap.String("notification_id", row.ID),
				zap.Error(err),
			)
		case !ok:
			skipped++
		default:
			sent++
		}
	}

	s.logger.Info("副通道投递批次完成",
		zap.Int("sent", sent),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
}

// sendSecondaryOne 单个收件人的一次投递尝试
// 返回 (是否实际发送, 错误)；无可用联系地址视为跳过而非失败
func (s *notificationService) sendSecondaryOne(ctx context.Context, row *model.Notification) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("副通道投递 panic: %v", r)
		}
	}()

	// 解析联系地址
	user, err := s.repo.User.GetByID(ctx, row.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	phone := ""
	if user.WhatsApp != nil {
		phone = NormalizePhone(*user.WhatsApp)
	}
	if phone == "" {
		return false, nil
	}

	text := renderPlainText(row)
	sendErr := s.trySend(ctx, phone, text, row)

	// 成功、失败与发送端 panic 都落日志表；日志写入失败不影响投递结果判定
	logRow := &model.WhatsAppLog{
		RecipientID: row.RecipientID,
		Phone:       phone,
		Message:     text,
		Link:        row.Link,
		Success:     sendErr == nil,
	}
	if sendErr != nil {
		logRow.Error = sendErr.Error()
	}
	if logErr := s.repo.WhatsAppLog.Create(ctx, logRow); logErr != nil {
		s.logger.Error("写入 WhatsApp 投递日志失败", zap.Error(logErr))
	}

	if sendErr != nil {
		return false, sendErr
	}
	return true, nil
}

// trySend 执行单次发送，发送端 panic 折算为普通错误
// 在发送与落日志之间隔离 panic，保证崩溃的尝试同样留下日志行
func (s *notificationService) trySend(ctx context.Context, phone, text string, row *model.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("副通道投递 panic: %v", r)
		}
	}()
	return s.sender.Send(ctx, phone, text, row.Link, map[string]string{
		"notification_id": row.ID,
		"category":        row.Category,
	})
}

// renderPlainText 渲染副通道纯文本（标题/内容/链接/来源的简单拼接）
func renderPlainText(row *model.Notification) string {
	var b strings.Builder
	b.WriteString("*" + row.Title + "*\n\n")
	b.WriteString(row.Message)
	if row.Link != "" {
		b.WriteString("\n\n" + row.Link)
	}
	b.WriteString("\n\n_" + row.Origin + "_")
	return b.String()
}

// ────────────────────── 读取侧：并集组装 ──────────────────────

// visibleDeliveries 组装查看者可见的投递集合
//
//   - 管理员：全量视图（定向过滤整体绕过，产品层面已确认保留该行为）
//   - 关联客户单位的账号：自有记录 ∪ 定向列表命中本单位的记录，按投递 ID 去重
//   - 其他账号：仅自有记录
//
// 并集在物化结果上完成：两条子查询谓词不兼容，分页和过滤不得下推
func (s *notificationService) visibleDeliveries(ctx context.Context, viewer *model.User) ([]model.Notification, error) {
	if viewer.IsAdmin() {
		return s.repo.Notification.ListAll(ctx)
	}

	own, err := s.repo.Notification.ListByRecipient(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	if viewer.ClientID == nil {
		return own, nil
	}

	client, err := s.repo.Directory.GetClient(ctx, *viewer.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 关联的单位已不存在：退化为仅自有记录
			s.logger.Warn("账号关联的客户单位不存在",
				zap.Int64("viewer_id", viewer.ID),
				zap.Int64("client_id", *viewer.ClientID),
			)
			return own, nil
		}
		return nil, err
	}

	orgRows, err := s.repo.Notification.ListWithOrgDestinations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(own))
	merged := make([]model.Notification, 0, len(own))
	for _, row := range own {
		seen[row.ID] = true
		merged = append(merged, row)
	}
	for _, row := range orgRows {
		if seen[row.ID] {
			continue
		}
		for _, ref := range row.Destinations {
			if MatchOrganizationRef(ref, client.ID, client.TaxID) {
				seen[row.ID] = true
				merged = append(merged, row)
				break
			}
		}
	}

	// 合并后统一按时间倒序（ID 兜底保证稳定顺序）
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})

	return merged, nil
}

// getViewer 加载查看者账号
func (s *notificationService) getViewer(ctx context.Context, viewerID int64) (*model.User, error) {
	viewer, err := s.repo.User.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrViewerNotFound
		}
		s.logger.Error("查询账号失败", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return nil, err
	}
	return viewer, nil
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, viewerID int64, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	viewer, err := s.getViewer(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.visibleDeliveries(ctx, viewer)
	if err != nil {
		s.logger.Error("组装可见通知失败", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return nil, 0, err
	}

	// 过滤作用于去重排序后的物化结果
	filtered := rows[:0:0]
	search := strings.ToLower(strings.TrimSpace(req.Search))
	for _, row := range rows {
		if req.Category != "" && row.Category != req.Category {
			continue
		}
		if req.Read != nil && row.Read != *req.Read {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.Title), search) &&
			!strings.Contains(strings.ToLower(row.Message), search) {
			continue
		}
		filtered = append(filtered, row)
	}

	total := int64(len(filtered))

	// 分页
	offset := req.GetOffset()
	limit := req.GetPageSize()
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page := filtered[offset:end]

	result := make([]dto.NotificationResponse, 0, len(page))
	for i := range page {
		result = append(result, toNotificationResponse(&page[i]))
	}

	return result, total, nil
}

// ────────────────────── ListUnread / CountUnread ──────────────────────

func (s *notificationService) ListUnread(ctx context.Context, viewerID int64) ([]dto.NotificationResponse, error) {
	viewer, err := s.getViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.visibleDeliveries(ctx, viewer)
	if err != nil {
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0)
	for i := range rows {
		if !rows[i].Read {
			result = append(result, toNotificationResponse(&rows[i]))
		}
	}
	return result, nil
}

// CountUnread 与 List 使用同一套并集组装，保证计数与列表一致
func (s *notificationService) CountUnread(ctx context.Context, viewerID int64) (int64, error) {
	viewer, err := s.getViewer(ctx, viewerID)
	if err != nil {
		return 0, err
	}

	rows, err := s.visibleDeliveries(ctx, viewer)
	if err != nil {
		return 0, err
	}

	var count int64
	for i := range rows {
		if !rows[i].Read {
			count++
		}
	}
	return count, nil
}

// ────────────────────── MarkRead / MarkAllRead ──────────────────────

// MarkRead 仅允许收件人本人翻转已读标志（管理员也不例外）
func (s *notificationService) MarkRead(ctx context.Context, id string, viewerID int64) error {
	affected, err := s.repo.Notification.MarkRead(ctx, id, viewerID)
	if err != nil {
		s.logger.Error("标记已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 将查看者并集视图内的全部未读置为已读
// 与 CountUnread 同一套组装逻辑，避免计数与操作范围不一致
func (s *notificationService) MarkAllRead(ctx context.Context, viewerID int64) (int64, error) {
	viewer, err := s.getViewer(ctx, viewerID)
	if err != nil {
		return 0, err
	}

	rows, err := s.visibleDeliveries(ctx, viewer)
	if err != nil {
		return 0, err
	}

	var ids []string
	for i := range rows {
		if !rows[i].Read {
			ids = append(ids, rows[i].ID)
		}
	}

	affected, err := s.repo.Notification.MarkReadBulk(ctx, ids)
	if err != nil {
		s.logger.Error("批量标记已读失败", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return 0, err
	}
	return affected, nil
}

// ────────────────────── Delete / DeleteAll ──────────────────────

// Delete 仅允许收件人本人删除
func (s *notificationService) Delete(ctx context.Context, id string, viewerID int64) error {
	affected, err := s.repo.Notification.Delete(ctx, id, viewerID)
	if err != nil {
		s.logger.Error("删除通知失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteAll 清空查看者自有的全部投递记录（按归属，不含并集匹配行）
func (s *notificationService) DeleteAll(ctx context.Context, viewerID int64) (int64, error) {
	affected, err := s.repo.Notification.DeleteByRecipient(ctx, viewerID)
	if err != nil {
		s.logger.Error("清空通知失败", zap.Int64("viewer_id", viewerID), zap.Error(err))
		return 0, err
	}
	return affected, nil
}

// ── 内部辅助方法 ──

// toNotificationResponse 将 model.Notification 转换为 dto.NotificationResponse
func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	dests := make([]dto.DestinationRefResponse, 0, len(n.Destinations))
	for _, d := range n.Destinations {
		dests = append(dests, dto.DestinationRefResponse{
			Kind:  d.Kind,
			ID:    d.ID,
			Label: d.Label,
			Info:  d.Info,
		})
	}
	return dto.NotificationResponse{
		ID:           n.ID,
		Title:        n.Title,
		Message:      n.Message,
		Category:     n.Category,
		Link:         n.Link,
		Icon:         n.Icon,
		Destinations: dests,
		Origin:       n.Origin,
		RecipientID:  n.RecipientID,
		Read:         n.Read,
		CreatedAt:    n.CreatedAt,
	}
}

// [自证通过] internal/service/notification_service.go
