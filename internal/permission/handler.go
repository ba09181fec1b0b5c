package permission

import (
	"errors"

	"kafe-backend/internal/database"
	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignPermissionRequest struct {
	UserID          uint                   `json:"user_id"`
	BranchID        uint                   `json:"branch_id"`
	PermissionLevel models.PermissionLevel `json:"permission_level"`
}

type RevokePermissionRequest struct {
	UserID   uint `json:"user_id"`
	BranchID uint `json:"branch_id"`
}

type GrantAllRequest struct {
	UserID uint `json:"user_id"`
}

type LimitRequest struct {
	UserID   uint `json:"user_id"`
	BranchID uint `json:"branch_id"`
}

type PermissionResponse struct {
	ID              uint                   `json:"id"`
	UserID          uint                   `json:"user_id"`
	BranchID        uint                   `json:"branch_id"`
	BranchName      string                 `json:"branch_name,omitempty"`
	PermissionLevel models.PermissionLevel `json:"permission_level"`
	UpdatedAt       string                 `json:"updated_at"`
}

// POST /api/admin/permissions (admin)
func AssignPermissionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AssignPermissionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.UserID == 0 || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id ve branch_id zorunlu")
		}
		if body.PermissionLevel != models.PermissionViewOnly && body.PermissionLevel != models.PermissionFullAccess {
			return fiber.NewError(fiber.StatusBadRequest, "permission_level 'view_only' veya 'full_access' olmalı")
		}

		var user models.User
		if err := database.DB.First(&user, body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		perm, err := Assign(database.DB, body.UserID, body.BranchID, body.PermissionLevel)
		if err != nil {
			if errors.Is(err, ErrBranchNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Yetki atanamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(PermissionResponse{
			ID:              perm.ID,
			UserID:          perm.UserID,
			BranchID:        perm.BranchID,
			PermissionLevel: perm.PermissionLevel,
			UpdatedAt:       perm.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/admin/permissions (admin)
func RevokePermissionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RevokePermissionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.UserID == 0 || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id ve branch_id zorunlu")
		}

		if err := Revoke(database.DB, body.UserID, body.BranchID); err != nil {
			if errors.Is(err, ErrNoBranchAccess) {
				return fiber.NewError(fiber.StatusNotFound, "Silinecek yetki kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Yetki kaldırılamadı")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/permissions/grant-all (admin)
func GrantAllBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GrantAllRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		var user models.User
		if err := database.DB.First(&user, body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		count, err := GrantAllBranches(database.DB, body.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetkiler atanamadı")
		}

		return c.JSON(fiber.Map{
			"user_id":         body.UserID,
			"granted_branches": count,
		})
	}
}

// POST /api/admin/permissions/limit (admin)
func LimitToSingleBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LimitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.UserID == 0 || body.BranchID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "user_id ve branch_id zorunlu")
		}

		var user models.User
		if err := database.DB.First(&user, body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		if err := LimitToSingleBranch(database.DB, body.UserID, body.BranchID); err != nil {
			if errors.Is(err, ErrBranchNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Yetkiler güncellenemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/admin/users/:id/permissions (admin)
func ListUserPermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı sorgulanamadı")
		}

		var perms []models.UserBranchPermission
		if err := database.DB.Preload("Branch").Where("user_id = ?", user.ID).Find(&perms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetkiler listelenemedi")
		}

		res := make([]PermissionResponse, 0, len(perms))
		for _, p := range perms {
			res = append(res, PermissionResponse{
				ID:              p.ID,
				UserID:          p.UserID,
				BranchID:        p.BranchID,
				BranchName:      p.Branch.Name,
				PermissionLevel: p.PermissionLevel,
				UpdatedAt:       p.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(fiber.Map{
			"user_id":     user.ID,
			"username":    user.Username,
			"role":        user.Role,
			"permissions": res,
		})
	}
}
