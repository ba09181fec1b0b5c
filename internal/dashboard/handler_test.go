package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dashDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

func setupDashboardDB(t *testing.T) (worker models.User) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	err = db.AutoMigrate(
		&models.Branch{}, &models.User{}, &models.UserBranchPermission{},
		&models.MenuItem{}, &models.Ingredient{}, &models.DailySale{},
		&models.DailyExpense{}, &models.Order{}, &models.OrderItem{},
		&models.Inventory{},
	)
	if err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	database.DB = db

	merkez := models.Branch{Name: "Merkez", IsActive: true}
	gizli := models.Branch{Name: "Gizli", IsActive: true}
	if err := db.Create(&merkez).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}
	if err := db.Create(&gizli).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}

	latte := models.MenuItem{ID: "latte-1", BranchID: merkez.ID, Name: "Latte", Price: 4.5, IsAvailable: true}
	secret := models.MenuItem{ID: "gizli-1", BranchID: gizli.ID, Name: "GizliUrun", Price: 9, IsAvailable: true}
	if err := db.Create(&latte).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	if err := db.Create(&secret).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}

	worker = models.User{Username: "w1", Email: "w1@test.local", PasswordHash: "x", Role: models.RoleWorker, IsActive: true}
	if err := db.Create(&worker).Error; err != nil {
		t.Fatalf("kullanıcı oluşturulamadı: %v", err)
	}
	perm := models.UserBranchPermission{UserID: worker.ID, BranchID: merkez.ID, PermissionLevel: models.PermissionViewOnly}
	if err := db.Create(&perm).Error; err != nil {
		t.Fatalf("yetki oluşturulamadı: %v", err)
	}

	seed := []models.DailySale{
		{BranchID: merkez.ID, MenuItemID: latte.ID, Quantity: 2, Revenue: 9, SaleDate: dashDay.Add(9 * time.Hour)},
		{BranchID: gizli.ID, MenuItemID: secret.ID, Quantity: 50, Revenue: 450, SaleDate: dashDay.Add(10 * time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("satış oluşturulamadı: %v", err)
		}
	}
	return worker
}

func newDashboardApp(userID uint, role models.UserRole) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxUserRoleKey, role)
		return c.Next()
	})
	app.Get("/dashboard", DailyDashboardHandler())
	return app
}

func getDashboard(t *testing.T, app *fiber.App, url string) DailyDashboardResponse {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatalf("istek hatası: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("200 bekleniyordu, gelen: %d", resp.StatusCode)
	}

	var res DailyDashboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("cevap çözümlenemedi: %v", err)
	}
	return res
}

// branch_id verilmişse en çok satan da o şubeyle sınırlıdır; admin'in
// filtresiz kapsamı tek şubelik dashboard'a sızmamalı.
func TestDashboardBranchParamLimitsTopItem(t *testing.T) {
	setupDashboardDB(t)
	app := newDashboardApp(99, models.RoleAdmin)

	res := getDashboard(t, app, "/dashboard?branch_id=1&date=2025-03-10")

	if res.TotalSales != 2 {
		t.Fatalf("toplam satış 2 bekleniyordu, gelen: %d", res.TotalSales)
	}
	if res.TopItem != "Latte" {
		t.Fatalf("Latte bekleniyordu, gelen: %q", res.TopItem)
	}
}

func TestDashboardWorkerScopedTopItem(t *testing.T) {
	worker := setupDashboardDB(t)
	app := newDashboardApp(worker.ID, models.RoleWorker)

	res := getDashboard(t, app, "/dashboard?date=2025-03-10")

	if res.TotalSales != 2 {
		t.Fatalf("toplam satış 2 bekleniyordu, gelen: %d", res.TotalSales)
	}
	if res.TopItem != "Latte" {
		t.Fatalf("Latte bekleniyordu, gelen: %q", res.TopItem)
	}
}

func TestDashboardAdminUnscoped(t *testing.T) {
	setupDashboardDB(t)
	app := newDashboardApp(99, models.RoleAdmin)

	res := getDashboard(t, app, "/dashboard?date=2025-03-10")

	if res.TotalSales != 52 {
		t.Fatalf("toplam satış 52 bekleniyordu, gelen: %d", res.TotalSales)
	}
	if res.TopItem != "GizliUrun" {
		t.Fatalf("GizliUrun bekleniyordu, gelen: %q", res.TopItem)
	}
}
