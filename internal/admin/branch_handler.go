package admin

import (
	"strings"

	"kafe-backend/internal/database"
	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type BranchResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CreateBranchRequest struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Address  string  `json:"address"`
	Phone    *string `json:"phone"` // Opsiyonel
	Email    *string `json:"email"` // Opsiyonel
}

type UpdateBranchRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

func toBranchResponse(b models.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Location:  b.Location,
		Address:   b.Address,
		Phone:     b.Phone,
		Email:     b.Email,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// ŞUBE CRUD
// ----------------------------------------

func CreateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
		}

		branch := models.Branch{
			Name:     body.Name,
			Location: strings.TrimSpace(body.Location),
			Address:  body.Address,
			IsActive: true,
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			branch.Email = strings.TrimSpace(strings.ToLower(*body.Email))
		}

		if err := database.DB.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı (isim tekil olmalı)")
		}

		return c.Status(fiber.StatusCreated).JSON(toBranchResponse(branch))
	}
}

func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Order("name asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}

		res := make([]BranchResponse, 0, len(branches))
		for _, b := range branches {
			res = append(res, toBranchResponse(b))
		}
		return c.JSON(res)
	}
}

func GetBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		return c.JSON(toBranchResponse(branch))
	}
}

func UpdateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		var body UpdateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Şube adı boş olamaz")
			}
			branch.Name = name
		}
		if body.Location != nil {
			branch.Location = strings.TrimSpace(*body.Location)
		}
		if body.Address != nil {
			branch.Address = *body.Address
		}
		if body.Phone != nil {
			branch.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			branch.Email = strings.TrimSpace(strings.ToLower(*body.Email))
		}
		if body.IsActive != nil {
			branch.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube güncellenemedi")
		}

		return c.JSON(toBranchResponse(branch))
	}
}

// DELETE /api/admin/branches/:id
// Şubeye bağlı menü/satış/gider kaydı varsa silme engellenir; pasife çek.
func DeleteBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
		}

		refs := map[string]interface{}{
			"menu_items":     &models.MenuItem{},
			"daily_sales":    &models.DailySale{},
			"daily_expenses": &models.DailyExpense{},
		}
		for name, model := range refs {
			var count int64
			if err := database.DB.Model(model).Where("branch_id = ?", branch.ID).Count(&count).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şube bağımlılıkları kontrol edilemedi")
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					"Şubeye bağlı kayıtlar var ("+name+"), silmek yerine pasife alın")
			}
		}

		if err := database.DB.Delete(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
