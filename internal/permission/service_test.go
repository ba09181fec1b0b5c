package permission

import (
	"errors"
	"testing"

	"kafe-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	if err := db.AutoMigrate(&models.Branch{}, &models.User{}, &models.UserBranchPermission{}); err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	return db
}

func seedBranches(t *testing.T, db *gorm.DB, names ...string) []models.Branch {
	t.Helper()

	branches := make([]models.Branch, 0, len(names))
	for _, name := range names {
		b := models.Branch{Name: name, IsActive: true}
		if err := db.Create(&b).Error; err != nil {
			t.Fatalf("şube oluşturulamadı: %v", err)
		}
		branches = append(branches, b)
	}
	return branches
}

func seedWorker(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	u := models.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: "x",
		Role:         models.RoleWorker,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("kullanıcı oluşturulamadı: %v", err)
	}
	return u
}

func countPerms(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.UserBranchPermission{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("sayım hatası: %v", err)
	}
	return count
}

func TestAssignUpsertsNotDuplicates(t *testing.T) {
	db := openTestDB(t)
	branches := seedBranches(t, db, "Merkez")
	w := seedWorker(t, db, "w1")

	if _, err := Assign(db, w.ID, branches[0].ID, models.PermissionViewOnly); err != nil {
		t.Fatalf("ilk atama hatası: %v", err)
	}
	perm, err := Assign(db, w.ID, branches[0].ID, models.PermissionFullAccess)
	if err != nil {
		t.Fatalf("yeniden atama hatası: %v", err)
	}

	if got := countPerms(t, db, w.ID); got != 1 {
		t.Fatalf("tek satır bekleniyordu, gelen: %d", got)
	}
	if perm.PermissionLevel != models.PermissionFullAccess {
		t.Fatalf("seviye full_access olmalıydı, gelen: %s", perm.PermissionLevel)
	}
}

func TestAssignUnknownBranch(t *testing.T) {
	db := openTestDB(t)
	w := seedWorker(t, db, "w1")

	_, err := Assign(db, w.ID, 999, models.PermissionViewOnly)
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("ErrBranchNotFound bekleniyordu, gelen: %v", err)
	}
}

func TestGrantThenRevoke(t *testing.T) {
	db := openTestDB(t)
	branches := seedBranches(t, db, "Merkez")
	w := seedWorker(t, db, "w1")

	if _, err := Assign(db, w.ID, branches[0].ID, models.PermissionFullAccess); err != nil {
		t.Fatalf("atama hatası: %v", err)
	}
	if err := Revoke(db, w.ID, branches[0].ID); err != nil {
		t.Fatalf("revoke hatası: %v", err)
	}

	// Revoke sonrası okuma bile reddedilir
	err := CheckBranch(db, w.ID, models.RoleWorker, branches[0].ID, models.PermissionViewOnly)
	if !errors.Is(err, ErrNoBranchAccess) {
		t.Fatalf("ErrNoBranchAccess bekleniyordu, gelen: %v", err)
	}
}

func TestRevokeMissingRow(t *testing.T) {
	db := openTestDB(t)
	branches := seedBranches(t, db, "Merkez")
	w := seedWorker(t, db, "w1")

	err := Revoke(db, w.ID, branches[0].ID)
	if !errors.Is(err, ErrNoBranchAccess) {
		t.Fatalf("ErrNoBranchAccess bekleniyordu, gelen: %v", err)
	}
}

func TestGrantAllBranchesSkipsInactive(t *testing.T) {
	db := openTestDB(t)
	branches := seedBranches(t, db, "Merkez", "Çarşı", "Sahil")
	w := seedWorker(t, db, "w1")

	// Bir şube pasife alınır, grant-all onu atlamalı
	db.Model(&branches[2]).Update("is_active", false)

	count, err := GrantAllBranches(db, w.ID)
	if err != nil {
		t.Fatalf("grant-all hatası: %v", err)
	}
	if count != 2 {
		t.Fatalf("2 şube bekleniyordu, gelen: %d", count)
	}

	for _, b := range branches[:2] {
		if err := CheckBranch(db, w.ID, models.RoleWorker, b.ID, models.PermissionFullAccess); err != nil {
			t.Fatalf("şube %d için full_access bekleniyordu: %v", b.ID, err)
		}
	}
	if err := CheckBranch(db, w.ID, models.RoleWorker, branches[2].ID, models.PermissionViewOnly); !errors.Is(err, ErrNoBranchAccess) {
		t.Fatalf("pasif şubeye erişim verilmemeliydi, gelen: %v", err)
	}
}

func TestLimitToSingleBranch(t *testing.T) {
	db := openTestDB(t)
	branches := seedBranches(t, db, "Merkez", "Çarşı", "Sahil")
	w := seedWorker(t, db, "w1")

	for _, b := range branches {
		if _, err := Assign(db, w.ID, b.ID, models.PermissionViewOnly); err != nil {
			t.Fatalf("atama hatası: %v", err)
		}
	}

	if err := LimitToSingleBranch(db, w.ID, branches[1].ID); err != nil {
		t.Fatalf("limit hatası: %v", err)
	}

	if got := countPerms(t, db, w.ID); got != 1 {
		t.Fatalf("tek satır bekleniyordu, gelen: %d", got)
	}

	// Kalan satır full_access olmalı
	if err := CheckBranch(db, w.ID, models.RoleWorker, branches[1].ID, models.PermissionFullAccess); err != nil {
		t.Fatalf("hedef şube full_access olmalıydı: %v", err)
	}

	// Diğer şubeler artık görüntülenemez bile
	for _, b := range []models.Branch{branches[0], branches[2]} {
		err := CheckBranch(db, w.ID, models.RoleWorker, b.ID, models.PermissionViewOnly)
		if !errors.Is(err, ErrNoBranchAccess) {
			t.Fatalf("şube %d reddedilmeliydi, gelen: %v", b.ID, err)
		}
	}
}

func TestBranchScopeWorkerZeroGrants(t *testing.T) {
	db := openTestDB(t)
	seedBranches(t, db, "Merkez")
	w := seedWorker(t, db, "w2")

	_, err := BranchScope(db, w.ID, models.RoleWorker)
	if !errors.Is(err, ErrNoBranchPermissionsAssigned) {
		t.Fatalf("ErrNoBranchPermissionsAssigned bekleniyordu, gelen: %v", err)
	}
}
