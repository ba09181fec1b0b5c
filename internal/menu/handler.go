package menu

import (
	"fmt"
	"strings"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IngredientRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	ImageURL string  `json:"image_url"`
}

type CreateMenuItemRequest struct {
	BranchID    uint                `json:"branch_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	ImageURL    string              `json:"image_url"`
	Category    string              `json:"category"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
	Category    *string  `json:"category"`
	IsAvailable *bool    `json:"is_available"`
}

type IngredientResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	ImageURL string  `json:"image_url,omitempty"`
}

type MenuItemResponse struct {
	ID          string               `json:"id"`
	BranchID    uint                 `json:"branch_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	ImageURL    string               `json:"image_url"`
	Category    string               `json:"category"`
	IsAvailable bool                 `json:"is_available"`
	Ingredients []IngredientResponse `json:"ingredients,omitempty"`
}

func toMenuItemResponse(m models.MenuItem) MenuItemResponse {
	res := MenuItemResponse{
		ID:          m.ID,
		BranchID:    m.BranchID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		Category:    m.Category,
		IsAvailable: m.IsAvailable,
	}
	for _, ing := range m.Ingredients {
		res.Ingredients = append(res.Ingredients, IngredientResponse{
			ID:       ing.ID,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			ImageURL: ing.ImageURL,
		})
	}
	return res
}

// query'den branch_id (opsiyonel)
func parseBranchIDQuery(c *fiber.Ctx) (*uint, error) {
	bidStr := c.Query("branch_id")
	if bidStr == "" {
		return nil, nil
	}
	var bid uint
	if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
	}
	return &bid, nil
}

// GET /api/menu-items?branch_id=&category=
// branch_id verilmezse kullanıcının yetkili olduğu tüm şubeler listelenir.
func ListMenuItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		branchID, err := parseBranchIDQuery(c)
		if err != nil {
			return err
		}

		q := database.DB.Preload("Ingredients").Order("name asc")

		if branchID != nil {
			if err := permission.CheckBranch(database.DB, userID, role, *branchID, models.PermissionViewOnly); err != nil {
				return permission.AsFiberError(err)
			}
			q = q.Where("branch_id = ?", *branchID)
		} else {
			scope, err := permission.BranchScope(database.DB, userID, role)
			if err != nil {
				return permission.AsFiberError(err)
			}
			if scope != nil {
				q = q.Where("branch_id IN ?", scope)
			}
		}

		if category := c.Query("category"); category != "" {
			q = q.Where("category = ?", category)
		}
		if c.Query("available_only", "true") == "true" {
			q = q.Where("is_available = ?", true)
		}

		var items []models.MenuItem
		if err := q.Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Menü listelenemedi")
		}

		res := make([]MenuItemResponse, 0, len(items))
		for _, m := range items {
			res = append(res, toMenuItemResponse(m))
		}
		return c.JSON(res)
	}
}

// GET /api/menu-items/:id
func GetMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var item models.MenuItem
		if err := database.DB.Preload("Ingredients").First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, item.BranchID, models.PermissionViewOnly); err != nil {
			return permission.AsFiberError(err)
		}

		return c.JSON(toMenuItemResponse(item))
	}
}

// POST /api/menu-items (full_access)
func CreateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name ve branch_id zorunlu")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		if err := permission.CheckBranch(database.DB, userID, role, body.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var branch models.Branch
		if err := database.DB.First(&branch, body.BranchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		item := models.MenuItem{
			ID:          uuid.NewString(),
			BranchID:    body.BranchID,
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			ImageURL:    body.ImageURL,
			Category:    body.Category,
			IsAvailable: true,
		}
		for _, ing := range body.Ingredients {
			item.Ingredients = append(item.Ingredients, models.Ingredient{
				Name:     strings.TrimSpace(ing.Name),
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
				ImageURL: ing.ImageURL,
			})
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toMenuItemResponse(item))
	}
}

// PUT /api/menu-items/:id (full_access)
func UpdateMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, item.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		var body UpdateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			item.Name = name
		}
		if body.Description != nil {
			item.Description = *body.Description
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			item.Price = *body.Price
		}
		if body.ImageURL != nil {
			item.ImageURL = *body.ImageURL
		}
		if body.Category != nil {
			item.Category = *body.Category
		}
		if body.IsAvailable != nil {
			item.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toMenuItemResponse(item))
	}
}

// DELETE /api/menu-items/:id (full_access)
func DeleteMenuItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var item models.MenuItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := permission.CheckBranch(database.DB, userID, role, item.BranchID, models.PermissionFullAccess); err != nil {
			return permission.AsFiberError(err)
		}

		// Satış kaydı olan ürün silinmez, pasife alınır
		var saleCount int64
		database.DB.Model(&models.DailySale{}).Where("menu_item_id = ?", item.ID).Count(&saleCount)
		if saleCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ürüne bağlı satış kayıtları var, silmek yerine pasife alın")
		}

		if err := database.DB.Select("Ingredients").Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
