package models

import "time"

type DailySale struct {
	ID         uint `gorm:"primaryKey"`
	BranchID   uint `gorm:"index;not null"`
	Branch     Branch
	MenuItemID string `gorm:"size:64;index;not null"`
	MenuItem   MenuItem
	Quantity   int       `gorm:"not null"`
	Revenue    float64   `gorm:"not null"` // yuvarlanmadan saklanır, export sınırında 2 haneye yuvarlanır
	SaleDate   time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}
