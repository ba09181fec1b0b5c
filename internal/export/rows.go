package export

import (
	"math"
	"time"

	"kafe-backend/internal/models"

	"gorm.io/gorm"
)

// Sekme başlıkları; sekme yeniyken yazılır, farklıysa yeniden oturtulur.
var (
	SalesHeader = []string{
		"date", "branch_id", "branch_name", "menu_item_id",
		"item_name", "quantity", "revenue",
	}
	ExpensesHeader = []string{
		"date", "branch_id", "category", "item_name",
		"quantity", "unit", "unit_cost", "total_amount", "description",
	}
)

type salesRecord struct {
	BranchID   uint
	BranchName string
	MenuItemID string
	ItemName   string
	Quantity   int
	Revenue    float64
}

// round2 - yalnızca export sınırında uygulanır; kaynak veride yuvarlama yok.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayBounds - takvim günü karşılaştırması için [gün başı, ertesi gün başı).
func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(24 * time.Hour)
}

// BuildSalesRows - şube+gün için satış satırları. Kalem bazında toplanmaz;
// her satış kaydı tek satırdır.
func BuildSalesRows(db *gorm.DB, branchID uint, date time.Time) ([][]interface{}, error) {
	start, end := dayBounds(date)

	var records []salesRecord
	err := db.Table("daily_sales").
		Select("daily_sales.branch_id, branches.name AS branch_name, daily_sales.menu_item_id, menu_items.name AS item_name, daily_sales.quantity, daily_sales.revenue").
		Joins("JOIN branches ON branches.id = daily_sales.branch_id").
		Joins("JOIN menu_items ON menu_items.id = daily_sales.menu_item_id").
		Where("daily_sales.branch_id = ? AND daily_sales.sale_date >= ? AND daily_sales.sale_date < ?", branchID, start, end).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	iso := start.Format("2006-01-02")
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			iso,
			r.BranchID,
			r.BranchName,
			r.MenuItemID,
			r.ItemName,
			r.Quantity,
			round2(r.Revenue),
		})
	}
	return rows, nil
}

// BuildExpenseRows - şube+gün için gider satırları, kayıt başına bir satır.
func BuildExpenseRows(db *gorm.DB, branchID uint, date time.Time) ([][]interface{}, error) {
	start, end := dayBounds(date)

	var expenses []models.DailyExpense
	err := db.
		Where("branch_id = ? AND expense_date >= ? AND expense_date < ?", branchID, start, end).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	iso := start.Format("2006-01-02")
	rows := make([][]interface{}, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []interface{}{
			iso,
			e.BranchID,
			e.Category,
			e.ItemName,
			e.Quantity,
			e.Unit,
			round2(e.UnitCost),
			round2(e.TotalAmount),
			e.Description,
		})
	}
	return rows, nil
}
