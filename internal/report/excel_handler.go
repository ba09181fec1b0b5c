package report

import (
	"fmt"
	"time"

	"kafe-backend/internal/auth"
	"kafe-backend/internal/database"
	"kafe-backend/internal/export"
	"kafe-backend/internal/models"
	"kafe-backend/internal/permission"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reports/daily/excel?date=&branch_id=
// Sheets export'unun üreteceği satırların aynısını .xlsx olarak indirir.
func DailyExcelReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		dateStr := c.Query("date", time.Now().AddDate(0, 0, -1).Format("2006-01-02"))
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date formatı YYYY-MM-DD olmalı")
		}

		var branches []models.Branch
		if bidStr := c.Query("branch_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "branch_id geçersiz")
			}
			if err := permission.CheckBranch(database.DB, userID, role, bid, models.PermissionViewOnly); err != nil {
				return permission.AsFiberError(err)
			}
			var b models.Branch
			if err := database.DB.First(&b, bid).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
			}
			branches = []models.Branch{b}
		} else {
			scope, err := permission.BranchScope(database.DB, userID, role)
			if err != nil {
				return permission.AsFiberError(err)
			}
			q := database.DB.Where("is_active = ?", true)
			if scope != nil {
				q = q.Where("id IN ?", scope)
			}
			if err := q.Find(&branches).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
			}
		}

		f := excelize.NewFile()
		defer f.Close()

		first := true
		for _, b := range branches {
			salesRows, err := export.BuildSalesRows(database.DB, b.ID, day)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Satış satırları oluşturulamadı")
			}
			expenseRows, err := export.BuildExpenseRows(database.DB, b.ID, day)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Gider satırları oluşturulamadı")
			}

			salesSheet := fmt.Sprintf("Sales_b%d", b.ID)
			if first {
				// Varsayılan "Sheet1" yeniden adlandırılır
				f.SetSheetName("Sheet1", salesSheet)
				first = false
			} else {
				if _, err := f.NewSheet(salesSheet); err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Rapor sayfası oluşturulamadı")
				}
			}
			writeSheet(f, salesSheet, export.SalesHeader, salesRows)

			expensesSheet := fmt.Sprintf("Expenses_b%d", b.ID)
			if _, err := f.NewSheet(expensesSheet); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Rapor sayfası oluşturulamadı")
			}
			writeSheet(f, expensesSheet, export.ExpensesHeader, expenseRows)
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor dosyası yazılamadı")
		}

		filename := fmt.Sprintf("daily_report_%s.xlsx", day.Format("2006-01-02"))
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	_ = f.SetSheetRow(sheet, "A1", &headerRow)

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		r := row
		_ = f.SetSheetRow(sheet, cell, &r)
	}
}
