package models

import "time"

type Inventory struct {
	ID               uint `gorm:"primaryKey"`
	BranchID         uint `gorm:"index;not null"`
	Branch           Branch
	ItemName         string  `gorm:"size:100;not null;index"`
	CurrentStock     float64 `gorm:"not null"`
	Unit             string  `gorm:"size:20;not null"` // g, ml, adet vs.
	MinimumThreshold float64 `gorm:"not null;default:0"`
	CostPerUnit      float64
	Supplier         string `gorm:"size:100"`
	LastRestocked    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Inventory) TableName() string {
	return "inventory"
}

type StockMovement struct {
	ID          uint `gorm:"primaryKey"`
	InventoryID uint `gorm:"index;not null"`
	Inventory   Inventory
	MovementType string  `gorm:"size:20;not null"` // restock, usage, waste, adjustment
	Quantity     float64 `gorm:"not null"`
	Unit         string  `gorm:"size:20;not null"`
	Reason       string  `gorm:"type:text"`
	CreatedAt    time.Time
	CreatedBy    *uint
}
