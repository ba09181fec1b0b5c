package admin

import (
	"strings"

	"kafe-backend/internal/database"
	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

// ----------------------------------------
// KULLANICI YÖNETİMİ (admin)
// ----------------------------------------

// POST /api/admin/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.FullName = strings.TrimSpace(body.FullName)

		if body.Username == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı, email ve şifre zorunlu")
		}
		if body.Role != models.RoleAdmin && body.Role != models.RoleWorker {
			return fiber.NewError(fiber.StatusBadRequest, "Rol 'admin' veya 'worker' olmalı")
		}

		var exist models.User
		if err := database.DB.Where("username = ? OR email = ?", body.Username, body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu kullanıcı adı veya email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Username:     body.Username,
			Email:        body.Email,
			FullName:     body.FullName,
			PasswordHash: string(hash),
			Role:         body.Role,
			IsActive:     true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		q := database.DB.Order("created_at DESC")
		if role := c.Query("role"); role != "" {
			q = q.Where("role = ?", role)
		}
		if err := q.Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, UserResponse{
				ID:        u.ID,
				Username:  u.Username,
				Email:     u.Email,
				FullName:  u.FullName,
				Role:      u.Role,
				IsActive:  u.IsActive,
				CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/users/:id
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.FullName != nil {
			user.FullName = strings.TrimSpace(*body.FullName)
		}
		if body.IsActive != nil {
			if user.IsSuperuser && !*body.IsActive {
				return fiber.NewError(fiber.StatusBadRequest, "Superuser pasife alınamaz")
			}
			user.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		return c.JSON(UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FullName:  user.FullName,
			Role:      user.Role,
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}
