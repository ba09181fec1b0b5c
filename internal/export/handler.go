package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// POST /api/admin/export?date=2025-12-09&branch_id=3 (admin)
// Zamanlanmış job ile aynı kod yolunu kullanır; idempotent replace sayesinde
// scheduled çalıştırmayla yarışması güvenlidir.
func ManualExportHandler(exporter *Exporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dateStr := c.Query("date")
		if dateStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "date parametresi zorunlu (YYYY-MM-DD)")
		}

		date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date formatı YYYY-MM-DD olmalı")
		}

		var branchID *uint
		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			branchID = &bid
		}

		if err := exporter.ExportDay(c.Context(), date, branchID); err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "Sheets export yapılandırılmamış")
			}
			return fiber.NewError(fiber.StatusBadGateway, "Export başarısız: "+err.Error())
		}

		return c.JSON(fiber.Map{
			"date":      date.Format("2006-01-02"),
			"branch_id": branchID,
			"status":    "exported",
		})
	}
}
