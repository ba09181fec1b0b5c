package permission

import (
	"errors"

	"kafe-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckBranch - kullanıcının tek bir şube üzerindeki yetkisini kontrol eder.
// Satırları veritabanından yükleyip saf Evaluate'e verir.
func CheckBranch(db *gorm.DB, userID uint, role models.UserRole, branchID uint, required models.PermissionLevel) error {
	if role == models.RoleAdmin {
		return nil
	}

	var perms []models.UserBranchPermission
	if err := db.Where("user_id = ? AND branch_id = ?", userID, branchID).Find(&perms).Error; err != nil {
		return err
	}

	return Evaluate(role, perms, branchID, required)
}

// BranchScope - şube belirtilmeyen sorgular için geçerli şube kümesi.
// Admin için nil döner; çağıran nil gördüğünde branch_id filtresi uygulamaz.
func BranchScope(db *gorm.DB, userID uint, role models.UserRole) ([]uint, error) {
	if role == models.RoleAdmin {
		return nil, nil
	}

	var perms []models.UserBranchPermission
	if err := db.Where("user_id = ?", userID).Find(&perms).Error; err != nil {
		return nil, err
	}

	return AllowedBranchIDs(role, perms)
}

// Assign - (user_id, branch_id) için yetki satırı upsert'ü. Satır varsa
// seviye güncellenir, yoksa eklenir; tekillik yarışı UPDATE'e düşer, hataya
// dönüşmez.
func Assign(db *gorm.DB, userID, branchID uint, level models.PermissionLevel) (*models.UserBranchPermission, error) {
	var branch models.Branch
	if err := db.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	perm := models.UserBranchPermission{
		UserID:          userID,
		BranchID:        branchID,
		PermissionLevel: level,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "branch_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission_level", "updated_at"}),
	}).Create(&perm).Error
	if err != nil {
		return nil, err
	}

	// Upsert UPDATE'e düştüyse perm.ID sıfır kalabilir, satırı geri oku
	var saved models.UserBranchPermission
	if err := db.Where("user_id = ? AND branch_id = ?", userID, branchID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// Revoke - yetki satırını siler; kalan durum "satır yok = erişim yok"tur.
func Revoke(db *gorm.DB, userID, branchID uint) error {
	res := db.Where("user_id = ? AND branch_id = ?", userID, branchID).
		Delete(&models.UserBranchPermission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoBranchAccess
	}
	return nil
}

// GrantAllBranches - her aktif şube için full_access satırı upsert eder.
func GrantAllBranches(db *gorm.DB, userID uint) (int, error) {
	var branches []models.Branch
	if err := db.Where("is_active = ?", true).Find(&branches).Error; err != nil {
		return 0, err
	}

	for _, b := range branches {
		if _, err := Assign(db, userID, b.ID, models.PermissionFullAccess); err != nil {
			return 0, err
		}
	}
	return len(branches), nil
}

// LimitToSingleBranch - hedef şube dışındaki tüm satırları siler, kalan
// satırı full_access yapar.
func LimitToSingleBranch(db *gorm.DB, userID, branchID uint) error {
	var branch models.Branch
	if err := db.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND branch_id <> ?", userID, branchID).
			Delete(&models.UserBranchPermission{}).Error; err != nil {
			return err
		}
		_, err := Assign(tx, userID, branchID, models.PermissionFullAccess)
		return err
	})
}
