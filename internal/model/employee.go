package model

// Employee 员工档案表 — 对应 employees
// 账号与员工为弱关联：users.employee_id 指向本表
type Employee struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"                   json:"id"`
	Name     string `gorm:"type:varchar(255);not null"                 json:"name"`
	Position string `gorm:"type:varchar(100)"                          json:"position"`
	Status   string `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// [自证通过] internal/model/employee.go
