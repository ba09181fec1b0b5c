package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"kafe-backend/internal/admin"
	"kafe-backend/internal/auth"
	"kafe-backend/internal/config"
	"kafe-backend/internal/dashboard"
	"kafe-backend/internal/database"
	"kafe-backend/internal/expense"
	"kafe-backend/internal/export"
	"kafe-backend/internal/inventory"
	"kafe-backend/internal/keepalive"
	"kafe-backend/internal/menu"
	"kafe-backend/internal/models"
	"kafe-backend/internal/order"
	"kafe-backend/internal/permission"
	"kafe-backend/internal/report"
	"kafe-backend/internal/sales"
	"kafe-backend/internal/scheduler"
	"kafe-backend/pkg/logger"
	appmetrics "kafe-backend/prometheus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	zlog := logger.Must(logger.New())
	defer zlog.Sync()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			zlog.Error("beklenmeyen hata", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Use(appmetrics.MetricsMiddleware())
	app.Get("/metrics", appmetrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Sheets exporter (yapılandırılmamışsa manuel/zamanlanmış exportlar
	// ErrNotConfigured döner, süreç yine de ayakta kalır)
	var sheetWriter export.SheetWriter
	if gs, err := export.NewGoogleSheets(context.Background(), cfg.GoogleCredentialsPath, cfg.SpreadsheetID, logger.Named(zlog, "sheets")); err == nil {
		sheetWriter = gs
	} else if !errors.Is(err, export.ErrNotConfigured) {
		zlog.Error("sheets istemcisi başlatılamadı", zap.Error(err))
	}
	exporter := export.NewExporter(database.DB, sheetWriter, logger.Named(zlog, "export"))

	// Günlük export scheduler'ı
	sched, err := scheduler.NewScheduler(cfg, exporter, logger.Named(zlog, "scheduler"))
	if err != nil {
		log.Fatalf("Scheduler başlatılamadı: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Opsiyonel keepalive self-ping
	pinger := keepalive.NewPinger(cfg.KeepaliveURL, logger.Named(zlog, "keepalive"))
	pinger.Start()
	defer pinger.Stop()

	// Opsiyonel sipariş event publisher'ı
	publisher, err := order.NewPublisher(cfg.RabbitMQURL, logger.Named(zlog, "orders"))
	if err != nil {
		zlog.Warn("rabbitmq bağlantısı kurulamadı, sipariş eventleri kapalı", zap.Error(err))
	}
	defer publisher.Close()

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-superuser", auth.RegisterSuperuserHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Şube yönetimi
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeleteBranchHandler())

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler())
	adminRoutes.Get("/users/:id/permissions", permission.ListUserPermissionsHandler())

	// Şube yetkileri
	adminRoutes.Post("/permissions", permission.AssignPermissionHandler())
	adminRoutes.Delete("/permissions", permission.RevokePermissionHandler())
	adminRoutes.Post("/permissions/grant-all", permission.GrantAllBranchesHandler())
	adminRoutes.Post("/permissions/limit", permission.LimitToSingleBranchHandler())

	// Manuel export tetikleyici
	adminRoutes.Post("/export", export.ManualExportHandler(exporter))

	// Menü
	protected.Get("/menu-items", menu.ListMenuItemsHandler())
	protected.Get("/menu-items/:id", menu.GetMenuItemHandler())
	protected.Post("/menu-items", menu.CreateMenuItemHandler())
	protected.Put("/menu-items/:id", menu.UpdateMenuItemHandler())
	protected.Delete("/menu-items/:id", menu.DeleteMenuItemHandler())

	// Satışlar
	protected.Post("/sales", sales.CreateSaleHandler())
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/summary/daily", sales.DailySummaryHandler())

	// Giderler
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Stok
	protected.Get("/inventory", inventory.ListInventoryHandler())
	protected.Post("/inventory", inventory.CreateInventoryHandler())
	protected.Post("/inventory/:id/stock", inventory.UpdateStockHandler())
	protected.Get("/inventory/:id/movements", inventory.ListStockMovementsHandler())

	// Siparişler
	protected.Post("/orders", order.CreateOrderHandler(publisher))
	protected.Get("/orders", order.ListOrdersHandler())
	protected.Get("/orders/:id", order.GetOrderHandler())
	protected.Put("/orders/:id/status", order.UpdateOrderStatusHandler())

	// Dashboard & raporlar
	protected.Get("/dashboard/daily", dashboard.DailyDashboardHandler())
	protected.Get("/reports/daily/excel", report.DailyExcelReportHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
