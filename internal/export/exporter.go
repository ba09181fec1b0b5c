package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kafe-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Exporter - bir takvim günü için satış/gider kayıtlarını şube başına iki
// sekmeye (Sales_b<id>, Expenses_b<id>) idempotent şekilde yayınlar. Aynı gün
// için iki kez çalıştırmak tek çalıştırmayla aynı sekme içeriğini bırakır.
type Exporter struct {
	db     *gorm.DB
	sheets SheetWriter
	logger *zap.Logger
}

func NewExporter(db *gorm.DB, sheets SheetWriter, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{db: db, sheets: sheets, logger: logger}
}

// ExportDay - hedef gün için export. branchID nil ise tüm aktif şubeler
// sırayla işlenir; paralel fan-out yok, tek spreadsheet dokümanının kendi
// yazma sıralaması koordinasyon için yeterli.
func (e *Exporter) ExportDay(ctx context.Context, date time.Time, branchID *uint) error {
	if e.sheets == nil {
		return ErrNotConfigured
	}

	var branches []models.Branch
	if branchID != nil {
		var b models.Branch
		if err := e.db.First(&b, *branchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("şube %d bulunamadı", *branchID)
			}
			return err
		}
		branches = []models.Branch{b}
	} else {
		if err := e.db.Where("is_active = ?", true).Find(&branches).Error; err != nil {
			return err
		}
	}

	dateISO := date.Format("2006-01-02")

	for _, b := range branches {
		if err := e.exportBranch(ctx, b, date, dateISO); err != nil {
			e.recordReport(b.ID, date, nil, models.ExportFailed)
			return fmt.Errorf("şube %d (%s) export edilemedi: %w", b.ID, b.Name, err)
		}
	}

	e.logger.Info("günlük export tamamlandı",
		zap.String("date", dateISO),
		zap.Int("branches", len(branches)))
	return nil
}

func (e *Exporter) exportBranch(ctx context.Context, b models.Branch, date time.Time, dateISO string) error {
	salesRows, err := BuildSalesRows(e.db, b.ID, date)
	if err != nil {
		return err
	}
	expenseRows, err := BuildExpenseRows(e.db, b.ID, date)
	if err != nil {
		return err
	}

	salesTab := fmt.Sprintf("Sales_b%d", b.ID)
	expensesTab := fmt.Sprintf("Expenses_b%d", b.ID)

	if err := e.sheets.ReplaceRowsForDate(ctx, salesTab, dateISO, SalesHeader, salesRows); err != nil {
		return err
	}
	if err := e.sheets.ReplaceRowsForDate(ctx, expensesTab, dateISO, ExpensesHeader, expenseRows); err != nil {
		return err
	}

	e.recordReport(b.ID, date, salesRows, models.ExportExported)
	return nil
}

// recordReport - şube/gün başına export muhasebesini upsert eder. Rapor satırı
// yazılamaması export'u geri döndürmez, sadece loglanır.
func (e *Exporter) recordReport(branchID uint, date time.Time, salesRows [][]interface{}, status models.ExportStatus) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	totalSales := 0
	totalRevenue := 0.0
	topItem := ""
	topQty := 0
	itemQty := map[string]int{}

	for _, row := range salesRows {
		// row: date, branch_id, branch_name, menu_item_id, item_name, quantity, revenue
		qty, _ := row[5].(int)
		rev, _ := row[6].(float64)
		name, _ := row[4].(string)

		totalSales += qty
		totalRevenue += rev
		itemQty[name] += qty
		if itemQty[name] > topQty {
			topQty = itemQty[name]
			topItem = name
		}
	}

	now := time.Now()
	report := models.DailyReport{
		BranchID:       branchID,
		ReportDate:     start,
		TotalSales:     totalSales,
		TotalRevenue:   totalRevenue,
		TopSellingItem: topItem,
		ExportStatus:   status,
		ExportedAt:     &now,
	}

	err := e.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "branch_id"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_sales", "total_revenue", "top_selling_item", "export_status", "exported_at"}),
	}).Create(&report).Error
	if err != nil {
		e.logger.Warn("günlük rapor kaydı yazılamadı",
			zap.Uint("branch_id", branchID),
			zap.Error(err))
	}
}
