package models

import "time"

type ExportStatus string

const (
	ExportPending  ExportStatus = "pending"
	ExportExported ExportStatus = "exported"
	ExportFailed   ExportStatus = "failed"
)

// DailyReport - şube/gün başına export muhasebesi. Başarısız bir gün burada
// görünür kalır ve manuel tetikleyici ile yeniden export edilebilir.
type DailyReport struct {
	ID             uint `gorm:"primaryKey"`
	BranchID       uint `gorm:"not null;uniqueIndex:idx_branch_report_date"`
	Branch         Branch
	ReportDate     time.Time `gorm:"not null;uniqueIndex:idx_branch_report_date"`
	TotalSales     int       `gorm:"not null;default:0"`
	TotalRevenue   float64   `gorm:"not null;default:0"`
	TopSellingItem string    `gorm:"size:100"`
	ExportStatus   ExportStatus `gorm:"size:20;not null;default:pending"`
	ExportedAt     *time.Time
}
