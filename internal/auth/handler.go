package auth

import (
	"strings"
	"time"

	"kafe-backend/internal/config"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterSuperuserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RegisterSuperuserHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterSuperuserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Username == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı, email ve şifre zorunlu")
		}

		// İlk kurulum dışında ikinci superuser engellenir
		var count int64
		database.DB.Model(&models.User{}).
			Where("is_superuser = ?", true).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Zaten bir superuser var")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Username:     body.Username,
			Email:        body.Email,
			FullName:     strings.TrimSpace(body.FullName),
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
			IsSuperuser:  true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		})
	}
}

func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		var user models.User
		if err := database.DB.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Hesap pasif durumda")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token oluşturulamadı")
		}

		now := time.Now()
		database.DB.Model(&user).Update("last_login", now)

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":        user.ID,
				"username":  user.Username,
				"email":     user.Email,
				"full_name": user.FullName,
				"role":      user.Role,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := CurrentUser(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			// Veritabanından çekilemezse locals'dan döndür
			return c.JSON(fiber.Map{
				"user_id": userID,
				"role":    role,
			})
		}

		response := fiber.Map{
			"user_id":   user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		}

		// Worker ise yetkili olduğu şubeler de eklenir
		if user.Role == models.RoleWorker {
			var perms []models.UserBranchPermission
			if err := database.DB.Preload("Branch").Where("user_id = ?", user.ID).Find(&perms).Error; err == nil {
				branches := make([]fiber.Map, 0, len(perms))
				for _, p := range perms {
					branches = append(branches, fiber.Map{
						"branch_id":        p.BranchID,
						"branch_name":      p.Branch.Name,
						"permission_level": p.PermissionLevel,
					})
				}
				response["branches"] = branches
			}
		}

		return c.JSON(response)
	}
}
