package models

import "time"

type PermissionLevel string

const (
	PermissionViewOnly   PermissionLevel = "view_only"
	PermissionFullAccess PermissionLevel = "full_access"
)

// UserBranchPermission - worker'ın tek bir şube üzerindeki yetkisi.
// (user_id, branch_id) çifti tekildir; yeniden atama yeni satır açmaz,
// mevcut satırın seviyesini günceller.
type UserBranchPermission struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"not null;uniqueIndex:idx_user_branch"`
	User            User
	BranchID        uint `gorm:"not null;uniqueIndex:idx_user_branch"`
	Branch          Branch
	PermissionLevel PermissionLevel `gorm:"size:20;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
