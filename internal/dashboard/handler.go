package dashboard

import (
	"fmt"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DailyDashboardResponse struct {
	Date          string  `json:"date"`
	TotalSales    int     `json:"total_sales"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetAmount     float64 `json:"net_amount"`
	OrderCount    int64   `json:"order_count"`
	TopItem       string  `json:"top_selling_item"`
	LowStockCount int64   `json:"low_stock_count"`
}

// şube filtresi: branch_id verilmişse yetki kontrolüyle tek şube, verilmemişse
// kullanıcının yetkili olduğu küme. Bir kez çözülür, beş sorguya da aynı
// filtre uygulanır
func resolveBranchFilter(c *fiber.Ctx, userID uint, role models.UserRole) (*uint, []uint, error) {
	if bidStr := c.Query("branch_id"); bidStr != "" {
		var bid uint
		if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
		}
		if err := permission.CheckBranch(database.DB, userID, role, bid, models.PermissionViewOnly); err != nil {
			return nil, nil, permission.AsFiberError(err)
		}
		return &bid, nil, nil
	}

	scope, err := permission.BranchScope(database.DB, userID, role)
	if err != nil {
		return nil, nil, permission.AsFiberError(err)
	}
	return nil, scope, nil
}

func applyBranchFilter(q *gorm.DB, col string, branchID *uint, scope []uint) *gorm.DB {
	if branchID != nil {
		return q.Where(col+" = ?", *branchID)
	}
	if scope != nil {
		return q.Where(col+" IN ?", scope)
	}
	return q
}

// GET /api/dashboard/daily?date=&branch_id=
func DailyDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		dateStr := c.Query("date", time.Now().Format("2006-01-02"))
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date formatı YYYY-MM-DD olmalı")
		}
		next := day.Add(24 * time.Hour)

		branchID, scope, err := resolveBranchFilter(c, userID, role)
		if err != nil {
			return err
		}

		salesQ := applyBranchFilter(database.DB.Model(&models.DailySale{}).
			Where("sale_date >= ? AND sale_date < ?", day, next), "branch_id", branchID, scope)

		var saleTotals struct {
			TotalSales   int
			TotalRevenue float64
		}
		if err := salesQ.Select("COALESCE(SUM(quantity),0) AS total_sales, COALESCE(SUM(revenue),0) AS total_revenue").
			Scan(&saleTotals).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış özeti hesaplanamadı")
		}

		expenseQ := applyBranchFilter(database.DB.Model(&models.DailyExpense{}).
			Where("expense_date >= ? AND expense_date < ?", day, next), "branch_id", branchID, scope)

		var expenseTotal struct{ Total float64 }
		if err := expenseQ.Select("COALESCE(SUM(total_amount),0) AS total").Scan(&expenseTotal).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider özeti hesaplanamadı")
		}

		var orderCount int64
		applyBranchFilter(database.DB.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", day, next), "branch_id", branchID, scope).
			Count(&orderCount)

		var lowStockCount int64
		applyBranchFilter(database.DB.Model(&models.Inventory{}).
			Where("current_stock <= minimum_threshold"), "branch_id", branchID, scope).
			Count(&lowStockCount)

		var top struct{ Name string }
		applyBranchFilter(database.DB.Table("daily_sales").
			Select("menu_items.name").
			Joins("JOIN menu_items ON menu_items.id = daily_sales.menu_item_id").
			Where("daily_sales.sale_date >= ? AND daily_sales.sale_date < ?", day, next), "daily_sales.branch_id", branchID, scope).
			Group("menu_items.name").
			Order("SUM(daily_sales.quantity) DESC").
			Limit(1).
			Scan(&top)

		return c.JSON(DailyDashboardResponse{
			Date:          day.Format("2006-01-02"),
			TotalSales:    saleTotals.TotalSales,
			TotalRevenue:  saleTotals.TotalRevenue,
			TotalExpenses: expenseTotal.Total,
			NetAmount:     saleTotals.TotalRevenue - expenseTotal.Total,
			OrderCount:    orderCount,
			TopItem:       top.Name,
			LowStockCount: lowStockCount,
		})
	}
}
