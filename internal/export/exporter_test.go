package export

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"kafe-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSheet - gerçek sekme deposunu bellekte taklit eder; çağrıları sayar ki
// toplu değiştirme semantiği ağ olmadan doğrulanabilsin.
type fakeSheet struct {
	tabs  map[string][][]interface{}
	calls int
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{tabs: map[string][][]interface{}{}}
}

func (f *fakeSheet) ReplaceRowsForDate(_ context.Context, tab string, dateISO string, header []string, rows [][]interface{}) error {
	f.calls++
	filtered := FilterRowsForDate(f.tabs[tab], dateISO, header)
	f.tabs[tab] = append(filtered, rows...)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	err = db.AutoMigrate(
		&models.Branch{}, &models.MenuItem{}, &models.Ingredient{},
		&models.DailySale{}, &models.DailyExpense{}, &models.DailyReport{},
	)
	if err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	return db
}

var testDay = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func seedExportData(t *testing.T, db *gorm.DB) models.Branch {
	t.Helper()

	branch := models.Branch{Name: "Merkez", IsActive: true}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}

	latte := models.MenuItem{ID: "latte-1", BranchID: branch.ID, Name: "Latte", Price: 4.5, IsAvailable: true}
	mocha := models.MenuItem{ID: "mocha-1", BranchID: branch.ID, Name: "Mocha", Price: 5.25, IsAvailable: true}
	if err := db.Create(&latte).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	if err := db.Create(&mocha).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}

	// Hedef günde 3 satış, başka günde 1 satış
	sales := []models.DailySale{
		{BranchID: branch.ID, MenuItemID: latte.ID, Quantity: 2, Revenue: 9.0, SaleDate: testDay.Add(9 * time.Hour)},
		{BranchID: branch.ID, MenuItemID: latte.ID, Quantity: 1, Revenue: 4.5, SaleDate: testDay.Add(13 * time.Hour)},
		{BranchID: branch.ID, MenuItemID: mocha.ID, Quantity: 3, Revenue: 15.756, SaleDate: testDay.Add(17 * time.Hour)},
		{BranchID: branch.ID, MenuItemID: mocha.ID, Quantity: 1, Revenue: 5.25, SaleDate: testDay.AddDate(0, 0, -1)},
	}
	for i := range sales {
		if err := db.Create(&sales[i]).Error; err != nil {
			t.Fatalf("satış oluşturulamadı: %v", err)
		}
	}

	// Hedef günde 2 gider, başka günde 1 gider
	expenses := []models.DailyExpense{
		{BranchID: branch.ID, Category: "süt ürünleri", ItemName: "Süt", Quantity: 12.5, Unit: "lt", UnitCost: 1.111, TotalAmount: 13.8875, ExpenseDate: testDay.Add(8 * time.Hour)},
		{BranchID: branch.ID, Category: "kahve", ItemName: "Çekirdek", Quantity: 2, Unit: "kg", UnitCost: 18, TotalAmount: 36, ExpenseDate: testDay.Add(10 * time.Hour)},
		{BranchID: branch.ID, Category: "kahve", ItemName: "Filtre", Quantity: 1, Unit: "kutu", UnitCost: 6, TotalAmount: 6, ExpenseDate: testDay.AddDate(0, 0, 2)},
	}
	for i := range expenses {
		if err := db.Create(&expenses[i]).Error; err != nil {
			t.Fatalf("gider oluşturulamadı: %v", err)
		}
	}

	return branch
}

func TestExportDayRowFidelity(t *testing.T) {
	db := openTestDB(t)
	branch := seedExportData(t, db)
	sheet := newFakeSheet()
	exporter := NewExporter(db, sheet, nil)

	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("export hatası: %v", err)
	}

	salesTab := sheet.tabs["Sales_b1"]
	expensesTab := sheet.tabs["Expenses_b1"]

	// başlık + hedef günün 3 satışı (diğer günün satışı yok)
	if len(salesTab) != 4 {
		t.Fatalf("satış sekmesinde 4 satır bekleniyordu, gelen: %d", len(salesTab))
	}
	if len(expensesTab) != 3 {
		t.Fatalf("gider sekmesinde 3 satır bekleniyordu, gelen: %d", len(expensesTab))
	}

	for _, row := range salesTab[1:] {
		if row[0] != "2025-01-15" {
			t.Fatalf("satış satırında tarih 2025-01-15 olmalıydı, gelen: %v", row[0])
		}
		if row[1] != branch.ID {
			t.Fatalf("satış satırında branch_id %d olmalıydı, gelen: %v", branch.ID, row[1])
		}
		if row[2] != "Merkez" {
			t.Fatalf("satış satırında şube adı bekleniyordu, gelen: %v", row[2])
		}
	}

	// Ciro export sınırında 2 haneye yuvarlanır: 15.756 -> 15.76
	found := false
	for _, row := range salesTab[1:] {
		if row[3] == "mocha-1" && row[5] == 3 {
			found = true
			if row[6] != 15.76 {
				t.Fatalf("yuvarlanmış ciro 15.76 bekleniyordu, gelen: %v", row[6])
			}
		}
	}
	if !found {
		t.Fatal("mocha satış satırı bulunamadı")
	}

	// Gider birim maliyeti 1.111 -> 1.11, toplam 13.8875 -> 13.89; miktar kesirli kalır
	milk := expensesTab[1]
	if milk[3] != "Süt" || milk[4] != 12.5 || milk[6] != 1.11 || milk[7] != 13.89 {
		t.Fatalf("süt gider satırı beklenen değerlerde değil: %v", milk)
	}
}

func TestExportDayIdempotent(t *testing.T) {
	db := openTestDB(t)
	seedExportData(t, db)
	sheet := newFakeSheet()
	exporter := NewExporter(db, sheet, nil)

	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("ilk export hatası: %v", err)
	}
	first := map[string][][]interface{}{}
	for tab, rows := range sheet.tabs {
		cp := make([][]interface{}, len(rows))
		copy(cp, rows)
		first[tab] = cp
	}

	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("ikinci export hatası: %v", err)
	}

	if !reflect.DeepEqual(first, sheet.tabs) {
		t.Fatal("iki ardışık export aynı sekme içeriğini bırakmalıydı")
	}
}

func TestExportDayReplacesOnlyTargetDate(t *testing.T) {
	db := openTestDB(t)
	seedExportData(t, db)
	sheet := newFakeSheet()

	// Sekmede başka bir güne ait satır önceden var; export ona dokunmamalı
	headerRow := make([]interface{}, len(SalesHeader))
	for i, h := range SalesHeader {
		headerRow[i] = h
	}
	oldRow := []interface{}{"2025-01-10", uint(1), "Merkez", "latte-1", "Latte", 5, 22.5}
	sheet.tabs["Sales_b1"] = [][]interface{}{headerRow, oldRow}

	exporter := NewExporter(db, sheet, nil)
	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("export hatası: %v", err)
	}

	salesTab := sheet.tabs["Sales_b1"]
	if len(salesTab) != 5 { // başlık + eski gün + 3 yeni
		t.Fatalf("5 satır bekleniyordu, gelen: %d", len(salesTab))
	}
	if !reflect.DeepEqual(salesTab[1], oldRow) {
		t.Fatalf("başka güne ait satır korunmalıydı, gelen: %v", salesTab[1])
	}
}

func TestExportDayRecordsDailyReport(t *testing.T) {
	db := openTestDB(t)
	branch := seedExportData(t, db)
	exporter := NewExporter(db, newFakeSheet(), nil)

	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("export hatası: %v", err)
	}
	// İkinci çalıştırma rapor satırını çoğaltmamalı
	if err := exporter.ExportDay(context.Background(), testDay, nil); err != nil {
		t.Fatalf("ikinci export hatası: %v", err)
	}

	var reports []models.DailyReport
	if err := db.Where("branch_id = ?", branch.ID).Find(&reports).Error; err != nil {
		t.Fatalf("rapor sorgusu hatası: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("tek rapor satırı bekleniyordu, gelen: %d", len(reports))
	}

	r := reports[0]
	if r.ExportStatus != models.ExportExported {
		t.Fatalf("exported durumu bekleniyordu, gelen: %s", r.ExportStatus)
	}
	if r.TotalSales != 6 { // 2 + 1 + 3
		t.Fatalf("toplam satış 6 bekleniyordu, gelen: %d", r.TotalSales)
	}
}

func TestExportDaySingleBranchFilter(t *testing.T) {
	db := openTestDB(t)
	seedExportData(t, db)

	other := models.Branch{Name: "Çarşı", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}

	sheet := newFakeSheet()
	exporter := NewExporter(db, sheet, nil)

	if err := exporter.ExportDay(context.Background(), testDay, &other.ID); err != nil {
		t.Fatalf("export hatası: %v", err)
	}

	if _, ok := sheet.tabs["Sales_b1"]; ok {
		t.Fatal("filtre dışındaki şube export edilmemeliydi")
	}
	if _, ok := sheet.tabs["Sales_b2"]; !ok {
		t.Fatal("hedef şubenin sekmesi oluşmalıydı")
	}
}

func TestExportDayNotConfigured(t *testing.T) {
	db := openTestDB(t)
	exporter := NewExporter(db, nil, nil)

	err := exporter.ExportDay(context.Background(), testDay, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("ErrNotConfigured bekleniyordu, gelen: %v", err)
	}
}

func TestFilterRowsForDate(t *testing.T) {
	header := []string{"date", "branch_id", "value"}
	existing := [][]interface{}{
		{"date", "branch_id", "value"},
		{"2025-01-14", 1, "a"},
		{"2025-01-15", 1, "b"},
		{"2025-01-16", 1, "c"},
	}

	got := FilterRowsForDate(existing, "2025-01-15", header)
	if len(got) != 3 {
		t.Fatalf("3 satır bekleniyordu (başlık + 2), gelen: %d", len(got))
	}
	for _, row := range got[1:] {
		if row[0] == "2025-01-15" {
			t.Fatal("hedef günün satırı ayıklanmalıydı")
		}
	}
}

func TestFilterRowsForDateEmptyTab(t *testing.T) {
	header := []string{"date", "value"}

	got := FilterRowsForDate(nil, "2025-01-15", header)
	if len(got) != 1 {
		t.Fatalf("yalnızca başlık bekleniyordu, gelen: %d satır", len(got))
	}
	if got[0][0] != "date" || got[0][1] != "value" {
		t.Fatalf("başlık oturtulmalıydı, gelen: %v", got[0])
	}
}
