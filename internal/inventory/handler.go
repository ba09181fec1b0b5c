package inventory

import (
	"fmt"
	"strings"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateInventoryRequest struct {
	BranchID         uint    `json:"branch_id"`
	ItemName         string  `json:"item_name"`
	CurrentStock     float64 `json:"current_stock"`
	Unit             string  `json:"unit"`
	MinimumThreshold float64 `json:"minimum_threshold"`
	CostPerUnit      float64 `json:"cost_per_unit"`
	Supplier         string  `json:"supplier"`
}

type StockUpdateRequest struct {
	NewStock     float64 `json:"new_stock"`
	MovementType string  `json:"movement_type"` // restock, usage, waste, adjustment
	Reason       string  `json:"reason"`
}

type InventoryResponse struct {
	ID               uint    `json:"id"`
	BranchID         uint    `json:"branch_id"`
	ItemName         string  `json:"item_name"`
	CurrentStock     float64 `json:"current_stock"`
	Unit             string  `json:"unit"`
	MinimumThreshold float64 `json:"minimum_threshold"`
	CostPerUnit      float64 `json:"cost_per_unit"`
	Supplier         string  `json:"supplier"`
	LowStock         bool    `json:"low_stock"`
	LastRestocked    string  `json:"last_restocked,omitempty"`
}

type StockMovementResponse struct {
	ID           uint    `json:"id"`
	InventoryID  uint    `json:"inventory_id"`
	MovementType string  `json:"movement_type"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Reason       string  `json:"reason"`
	CreatedAt    string  `json:"created_at"`
}

func toInventoryResponse(i models.Inventory) InventoryResponse {
	res := InventoryResponse{
		ID:               i.ID,
		BranchID:         i.BranchID,
		ItemName:         i.ItemName,
		CurrentStock:     i.CurrentStock,
		Unit:             i.Unit,
		MinimumThreshold: i.MinimumThreshold,
		CostPerUnit:      i.CostPerUnit,
		Supplier:         i.Supplier,
		LowStock:         i.CurrentStock <= i.MinimumThreshold,
	}
	if i.LastRestocked != nil {
		res.LastRestocked = i.LastRestocked.Format("2006-01-02 15:04:05")
	}
	return res
}

var validMovementTypes = map[string]bool{
	"restock":    true,
	"usage":      true,
	"waste":      true,
	"adjustment": true,
}

// GET /api/inventory?branch_id=&low_stock_only=
func ListInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := database.DB.Order("item_name asc")

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

		if c.Query("low_stock_only") == "true" {
			q = q.Where("current_stock <= minimum_threshold")
		}

		var items []models.Inventory
		if err := q.Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok listelenemedi")
		}

		res := make([]InventoryResponse, 0, len(items))
		for _, i := range items {
			res = append(res, toInventoryResponse(i))
		}
		return c.JSON(res)
	}
}

// POST /api/inventory (full_access)
func CreateInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateInventoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.ItemName = strings.TrimSpace(body.ItemName)
		if body.BranchID == 0 || body.ItemName == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "branch_id, item_name ve unit zorunlu")
		}

		if err := permission.CheckBranch(database.DB, userID, role, body.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		item := models.Inventory{
			BranchID:         body.BranchID,
			ItemName:         body.ItemName,
			CurrentStock:     body.CurrentStock,
			Unit:             body.Unit,
			MinimumThreshold: body.MinimumThreshold,
			CostPerUnit:      body.CostPerUnit,
			Supplier:         body.Supplier,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kalemi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toInventoryResponse(item))
	}
}

// POST /api/inventory/:id/stock (full_access)
// Stok seviyesini günceller ve hareketi kaydeder.
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var item models.Inventory
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kalemi bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, item.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var body StockUpdateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.MovementType == "" {
			body.MovementType = "adjustment"
		}
		if !validMovementTypes[body.MovementType] {
			return fiber.NewError(fiber.StatusBadRequest, "movement_type restock/usage/waste/adjustment olmalı")
		}
		if body.NewStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}

		diff := body.NewStock - item.CurrentStock

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			item.CurrentStock = body.NewStock
			if body.MovementType == "restock" {
				now := time.Now()
				item.LastRestocked = &now
			}
			if err := tx.Save(&item).Error; err != nil {
				return err
			}

			movement := models.StockMovement{
				InventoryID:  item.ID,
				MovementType: body.MovementType,
				Quantity:     diff,
				Unit:         item.Unit,
				Reason:       body.Reason,
				CreatedBy:    &userID,
			}
			return tx.Create(&movement).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		return c.JSON(toInventoryResponse(item))
	}
}

// GET /api/inventory/:id/movements
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var item models.Inventory
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kalemi bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, item.BranchID, models.PermissionViewOnly); err != nil {
			return permission.AsFiberError(err)
		}

		var movements []models.StockMovement
		if err := database.DB.Where("inventory_id = ?", item.ID).
			Order("created_at DESC").Limit(200).
			Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		res := make([]StockMovementResponse, 0, len(movements))
		for _, m := range movements {
			res = append(res, StockMovementResponse{
				ID:           m.ID,
				InventoryID:  m.InventoryID,
				MovementType: m.MovementType,
				Quantity:     m.Quantity,
				Unit:         m.Unit,
				Reason:       m.Reason,
				CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
