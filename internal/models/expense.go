package models

import "time"

type DailyExpense struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	Category    string  `gorm:"size:50"`
	ItemName    string  `gorm:"size:100;not null"`
	Quantity    float64 `gorm:"not null"` // kg gibi kesirli miktarlar olabilir
	Unit        string  `gorm:"size:20"`
	UnitCost    float64 `gorm:"not null"`
	TotalAmount float64 `gorm:"not null"`
	Description string  `gorm:"size:255"`
	ExpenseDate time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
