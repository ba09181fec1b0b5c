package models

import "time"

type MenuItem struct {
	ID          string `gorm:"primaryKey;size:64"`
	BranchID    uint   `gorm:"index;not null"`
	Branch      Branch
	Name        string  `gorm:"size:100;not null;index"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	ImageURL    string  `gorm:"size:255"`
	Category    string  `gorm:"size:50"` // hot, iced, specialty vs.
	IsAvailable bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Ingredients []Ingredient `gorm:"constraint:OnDelete:CASCADE"`
}

type Ingredient struct {
	ID         uint   `gorm:"primaryKey"`
	MenuItemID string `gorm:"size:64;index;not null"`
	Name       string `gorm:"size:100;not null"`
	Quantity   float64 `gorm:"not null"`
	Unit       string  `gorm:"size:20;not null"` // g, ml, shot, pump
	ImageURL   string  `gorm:"size:255"`
}
