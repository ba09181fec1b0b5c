package models

import "time"

type Branch struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Location  string `gorm:"size:100"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`  // Opsiyonel telefon
	Email     string `gorm:"size:100"` // Opsiyonel şube maili
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
