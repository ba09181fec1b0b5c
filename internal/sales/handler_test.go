package sales

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

var summaryDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

// İki şube: worker yalnızca Merkez'i görebilir. Gizli şubede çok daha büyük
// bir satış vardır; özet asla oraya taşmamalı.
func setupSummaryDB(t *testing.T) (worker models.User, merkez models.Branch) {
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
	)
	if err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	database.DB = db

	merkez = models.Branch{Name: "Merkez", IsActive: true}
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
		{BranchID: merkez.ID, MenuItemID: latte.ID, Quantity: 1, Revenue: 4.5, SaleDate: summaryDay.Add(10 * time.Hour)},
		{BranchID: gizli.ID, MenuItemID: secret.ID, Quantity: 100, Revenue: 900, SaleDate: summaryDay.Add(11 * time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("satış oluşturulamadı: %v", err)
		}
	}
	return worker, merkez
}

func newSummaryApp(userID uint, role models.UserRole) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxUserRoleKey, role)
		return c.Next()
	})
	app.Get("/summary", DailySummaryHandler())
	return app
}

func getSummary(t *testing.T, app *fiber.App, url string) DailySalesSummaryResponse {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatalf("istek hatası: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("200 bekleniyordu, gelen: %d", resp.StatusCode)
	}

	var res DailySalesSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("cevap çözümlenemedi: %v", err)
	}
	return res
}

func TestDailySummaryWorkerSingleBranch(t *testing.T) {
	worker, merkez := setupSummaryDB(t)
	app := newSummaryApp(worker.ID, models.RoleWorker)

	res := getSummary(t, app, "/summary?branch_id=1&date=2025-03-10")

	if res.TotalSales != 1 {
		t.Fatalf("toplam satış 1 bekleniyordu, gelen: %d", res.TotalSales)
	}
	// En çok satan da aynı şube filtresinden geçmeli; diğer şubenin
	// 100'lük satışı sızmamalı
	if res.TopItem != "Latte" {
		t.Fatalf("Latte bekleniyordu, gelen: %q (şube %d dışına taşma)", res.TopItem, merkez.ID)
	}
}

func TestDailySummaryWorkerScoped(t *testing.T) {
	worker, _ := setupSummaryDB(t)
	app := newSummaryApp(worker.ID, models.RoleWorker)

	res := getSummary(t, app, "/summary?date=2025-03-10")

	if res.TotalSales != 1 {
		t.Fatalf("toplam satış 1 bekleniyordu, gelen: %d", res.TotalSales)
	}
	if res.TopItem != "Latte" {
		t.Fatalf("Latte bekleniyordu, gelen: %q", res.TopItem)
	}
}

func TestDailySummaryAdminBranchParam(t *testing.T) {
	setupSummaryDB(t)
	app := newSummaryApp(99, models.RoleAdmin)

	// Admin de branch_id verdiyse özet o şubeyle sınırlı kalır
	res := getSummary(t, app, "/summary?branch_id=1&date=2025-03-10")
	if res.TopItem != "Latte" {
		t.Fatalf("Latte bekleniyordu, gelen: %q", res.TopItem)
	}

	// Filtresiz admin tüm şubeleri görür
	all := getSummary(t, app, "/summary?date=2025-03-10")
	if all.TotalSales != 101 || all.TopItem != "GizliUrun" {
		t.Fatalf("101/GizliUrun bekleniyordu, gelen: %d/%q", all.TotalSales, all.TopItem)
	}
}
