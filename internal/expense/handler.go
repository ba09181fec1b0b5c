package expense

import (
	"fmt"
	"strings"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	BranchID    uint    `json:"branch_id"`
	Category    string  `json:"category"`
	ItemName    string  `json:"item_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitCost    float64 `json:"unit_cost"`
	TotalAmount *float64 `json:"total_amount"` // verilmezse quantity * unit_cost
	Description string   `json:"description"`
	ExpenseDate string   `json:"expense_date"` // "2025-12-09", verilmezse bugün
}

type UpdateExpenseRequest struct {
	Category    *string  `json:"category"`
	ItemName    *string  `json:"item_name"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	UnitCost    *float64 `json:"unit_cost"`
	TotalAmount *float64 `json:"total_amount"`
	Description *string  `json:"description"`
	ExpenseDate *string  `json:"expense_date"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	BranchID    uint    `json:"branch_id"`
	Category    string  `json:"category"`
	ItemName    string  `json:"item_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitCost    float64 `json:"unit_cost"`
	TotalAmount float64 `json:"total_amount"`
	Description string  `json:"description"`
	ExpenseDate string  `json:"expense_date"`
}

func toExpenseResponse(e models.DailyExpense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		BranchID:    e.BranchID,
		Category:    e.Category,
		ItemName:    e.ItemName,
		Quantity:    e.Quantity,
		Unit:        e.Unit,
		UnitCost:    e.UnitCost,
		TotalAmount: e.TotalAmount,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
	}
}

// POST /api/expenses (full_access)
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.ItemName = strings.TrimSpace(body.ItemName)
		if body.BranchID == 0 || body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch_id ve item_name zorunlu")
		}
		if body.Quantity < 0 || body.UnitCost < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar ve birim maliyet negatif olamaz")
		}

		if err := permission.CheckBranch(database.DB, userID, role, body.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var branch models.Branch
		if err := database.DB.First(&branch, body.BranchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		expenseDate := time.Now()
		if body.ExpenseDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", body.ExpenseDate, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expense_date formatı YYYY-MM-DD olmalı")
			}
			expenseDate = parsed
		}

		total := body.Quantity * body.UnitCost
		if body.TotalAmount != nil {
			total = *body.TotalAmount
		}

		exp := models.DailyExpense{
			BranchID:    body.BranchID,
			Category:    strings.TrimSpace(body.Category),
			ItemName:    body.ItemName,
			Quantity:    body.Quantity,
			Unit:        body.Unit,
			UnitCost:    body.UnitCost,
			TotalAmount: total,
			Description: body.Description,
			ExpenseDate: expenseDate,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(exp))
	}
}

// GET /api/expenses?branch_id=&date=
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := database.DB.Order("expense_date DESC")

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
			q = q.Where("expense_date >= ? AND expense_date < ?", day, day.Add(24*time.Hour))
		}

		var expenses []models.DailyExpense
		if err := q.Limit(500).Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		res := make([]ExpenseResponse, 0, len(expenses))
		for _, e := range expenses {
			res = append(res, toExpenseResponse(e))
		}
		return c.JSON(res)
	}
}

// PUT /api/expenses/:id (full_access)
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var exp models.DailyExpense
		if err := database.DB.First(&exp, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, exp.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Category != nil {
			exp.Category = strings.TrimSpace(*body.Category)
		}
		if body.ItemName != nil {
			name := strings.TrimSpace(*body.ItemName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "item_name boş olamaz")
			}
			exp.ItemName = name
		}
		if body.Quantity != nil {
			exp.Quantity = *body.Quantity
		}
		if body.Unit != nil {
			exp.Unit = *body.Unit
		}
		if body.UnitCost != nil {
			exp.UnitCost = *body.UnitCost
		}
		if body.TotalAmount != nil {
			exp.TotalAmount = *body.TotalAmount
		} else if body.Quantity != nil || body.UnitCost != nil {
			exp.TotalAmount = exp.Quantity * exp.UnitCost
		}
		if body.Description != nil {
			exp.Description = *body.Description
		}
		if body.ExpenseDate != nil {
			parsed, err := time.ParseInLocation("2006-01-02", *body.ExpenseDate, time.Local)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expense_date formatı YYYY-MM-DD olmalı")
			}
			exp.ExpenseDate = parsed
		}

		if err := database.DB.Save(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		return c.JSON(toExpenseResponse(exp))
	}
}

// DELETE /api/expenses/:id (full_access)
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var exp models.DailyExpense
		if err := database.DB.First(&exp, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, exp.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		if err := database.DB.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
