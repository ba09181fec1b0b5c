package database

import (
	"log"

	"kafe-backend/internal/config"
	"kafe-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	// Eski tek şubeli kurulumdan kalan kayıtlar için branch_id backfill
	// (AutoMigrate'ten ÖNCE, mevcut veriyi korumak için)
	backfillBranchID(DB)

	err = DB.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.UserBranchPermission{},
		&models.MenuItem{},
		&models.Ingredient{},
		&models.DailySale{},
		&models.DailyExpense{},
		&models.Order{},
		&models.OrderItem{},
		&models.Inventory{},
		&models.StockMovement{},
		&models.DailyReport{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// backfillBranchID - branch_id kolonu sonradan eklenen tablolarda NULL kalan
// kayıtları ilk şubeye bağlar. Şube hiç yoksa kayıtlar olduğu gibi bırakılır;
// NOT NULL constraint'i AutoMigrate sırasında uygulanır.
func backfillBranchID(db *gorm.DB) {
	tables := []string{"menu_items", "daily_sales", "daily_expenses", "orders", "inventory", "daily_reports"}

	var firstBranch models.Branch
	if err := db.First(&firstBranch).Error; err != nil {
		return
	}

	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			continue
		}
		if !db.Migrator().HasColumn(table, "branch_id") {
			continue
		}

		var nullCount int64
		db.Raw("SELECT COUNT(*) FROM "+table+" WHERE branch_id IS NULL").Scan(&nullCount)
		if nullCount == 0 {
			continue
		}

		if err := db.Exec("UPDATE "+table+" SET branch_id = ? WHERE branch_id IS NULL", firstBranch.ID).Error; err != nil {
			log.Printf("%s tablosunda branch_id backfill hatası: %v", table, err)
			continue
		}
		log.Printf("%s tablosunda %d kayıt branch_id=%d ile güncellendi", table, nullCount, firstBranch.ID)
	}
}
