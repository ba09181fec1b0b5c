package sales

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

type CreateSaleRequest struct {
	BranchID   uint    `json:"branch_id"`
	MenuItemID string  `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	Revenue    *float64 `json:"revenue"`   // verilmezse quantity * fiyat
	SaleDate   string   `json:"sale_date"` // "2025-12-09", verilmezse bugün
}

type SaleResponse struct {
	ID         uint    `json:"id"`
	BranchID   uint    `json:"branch_id"`
	MenuItemID string  `json:"menu_item_id"`
	ItemName   string  `json:"item_name,omitempty"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
	SaleDate   string  `json:"sale_date"`
}

type DailySalesSummaryResponse struct {
	Date         string  `json:"date"`
	TotalSales   int     `json:"total_sales"`
	TotalRevenue float64 `json:"total_revenue"`
	TopItem      string  `json:"top_selling_item"`
}

// POST /api/sales (full_access)
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.BranchID == 0 || body.MenuItemID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch_id ve menu_item_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar pozitif olmalı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, body.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", body.MenuItemID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		if item.BranchID != body.BranchID {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bu şubeye ait değil")
		}

		saleDate := time.Now()
		if body.SaleDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", body.SaleDate, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "sale_date formatı YYYY-MM-DD olmalı")
			}
			saleDate = parsed
		}

		revenue := float64(body.Quantity) * item.Price
		if body.Revenue != nil {
			if *body.Revenue < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Ciro negatif olamaz")
			}
			revenue = *body.Revenue
		}

		sale := models.DailySale{
			BranchID:   body.BranchID,
			MenuItemID: body.MenuItemID,
			Quantity:   body.Quantity,
			Revenue:    revenue,
			SaleDate:   saleDate,
		}

		if err := database.DB.Create(&sale).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(SaleResponse{
			ID:         sale.ID,
			BranchID:   sale.BranchID,
			MenuItemID: sale.MenuItemID,
			ItemName:   item.Name,
			Quantity:   sale.Quantity,
			Revenue:    sale.Revenue,
			SaleDate:   sale.SaleDate.Format("2006-01-02"),
		})
	}
}

// GET /api/sales?branch_id=&date=
// branch_id verilmezse kullanıcının yetkili olduğu tüm şubeler. Hiç yetkisi
// olmayan worker boş liste değil 403 alır.
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := database.DB.Preload("MenuItem").Order("sale_date DESC")

		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			if err := permission.CheckBranch(database.DB, userID, role, bid, models.PermissionViewOnly); err != nil {
				return permission.AsFiberError(err)
			}
			q = q.Where("branch_id = ?", bid)
		} else {
			scope, err := permission.BranchScope(database.DB, userID, role)
			if err != nil {
				return permission.AsFiberError(err)
			}
			if scope != nil {
				q = q.Where("branch_id IN ?", scope)
			}
		}

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date formatı YYYY-MM-DD olmalı")
			}
			q = q.Where("sale_date >= ? AND sale_date < ?", day, day.Add(24*time.Hour))
		}

		var sales []models.DailySale
		if err := q.Limit(500).Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		res := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			res = append(res, SaleResponse{
				ID:         s.ID,
				BranchID:   s.BranchID,
				MenuItemID: s.MenuItemID,
				ItemName:   s.MenuItem.Name,
				Quantity:   s.Quantity,
				Revenue:    s.Revenue,
				SaleDate:   s.SaleDate.Format("2006-01-02"),
			})
		}
		return c.JSON(res)
	}
}

// GET /api/sales/summary/daily?date=&branch_id=
func DailySummaryHandler() fiber.Handler {
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

		// Şube filtresi bir kez çözülür; toplamlar ve en çok satan sorgusu
		// aynı filtreyle çalışır
		var branchID *uint
		var scope []uint
		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			if err := permission.CheckBranch(database.DB, userID, role, bid, models.PermissionViewOnly); err != nil {
				return permission.AsFiberError(err)
			}
			branchID = &bid
		} else {
			scope, err = permission.BranchScope(database.DB, userID, role)
			if err != nil {
				return permission.AsFiberError(err)
			}
		}

		applyScope := func(q *gorm.DB, col string) *gorm.DB {
			if branchID != nil {
				return q.Where(col+" = ?", *branchID)
			}
			if scope != nil {
				return q.Where(col+" IN ?", scope)
			}
			return q
		}

		q := applyScope(database.DB.Model(&models.DailySale{}).
			Where("sale_date >= ? AND sale_date < ?", day, next), "branch_id")

		var totals struct {
			TotalSales   int
			TotalRevenue float64
		}
		if err := q.Select("COALESCE(SUM(quantity),0) AS total_sales, COALESCE(SUM(revenue),0) AS total_revenue").
			Scan(&totals).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		var top struct{ Name string }
		applyScope(database.DB.Table("daily_sales").
			Select("menu_items.name").
			Joins("JOIN menu_items ON menu_items.id = daily_sales.menu_item_id").
			Where("daily_sales.sale_date >= ? AND daily_sales.sale_date < ?", day, next), "daily_sales.branch_id").
			Group("menu_items.name").
			Order("SUM(daily_sales.quantity) DESC").
			Limit(1).
			Scan(&top)

		return c.JSON(DailySalesSummaryResponse{
			Date:         day.Format("2006-01-02"),
			TotalSales:   totals.TotalSales,
			TotalRevenue: totals.TotalRevenue,
			TopItem:      top.Name,
		})
	}
}
