package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID            uint `gorm:"primaryKey"`
	BranchID      uint `gorm:"index;not null"`
	Branch        Branch
	CustomerName  string      `gorm:"size:100"`
	CustomerEmail string      `gorm:"size:100"`
	TotalAmount   float64     `gorm:"not null"`
	Status        OrderStatus `gorm:"size:20;not null;default:pending"`
	OrderType     string      `gorm:"size:20;not null;default:dine_in"` // dine_in, takeaway, delivery
	CreatedAt     time.Time
	CompletedAt   *time.Time

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID                  uint   `gorm:"primaryKey"`
	OrderID             uint   `gorm:"index;not null"`
	MenuItemID          string `gorm:"size:64;index;not null"`
	MenuItem            MenuItem
	Quantity            int     `gorm:"not null"`
	UnitPrice           float64 `gorm:"not null"`
	TotalPrice          float64 `gorm:"not null"`
	SpecialInstructions string  `gorm:"type:text"`
}
