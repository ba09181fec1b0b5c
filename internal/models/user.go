package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleWorker UserRole = "worker"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	FullName     string `gorm:"size:100"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	IsSuperuser  bool     `gorm:"not null;default:false"`
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Eski şemayla uyum için tablo adı "admins" olarak kalıyor
func (User) TableName() string {
	return "admins"
}
