package permission

import (
	"errors"

	"kafe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Yapılandırılmış red sebepleri: handler "hiç erişimin yok" ile "yetkin
// yetersiz" mesajlarını ayırt edebilmeli.
var (
	ErrNoBranchAccess              = errors.New("bu şubeye erişim yetkiniz yok")
	ErrInsufficientPermission      = errors.New("bu işlem için şube yetkiniz yetersiz")
	ErrNoBranchPermissionsAssigned = errors.New("size atanmış bir şube yok")
	ErrBranchNotFound              = errors.New("şube bulunamadı")
)

// Evaluate - (kullanıcı, şube, istenen seviye) üçlüsü için izin kararı verir.
// Saf fonksiyondur; perms çağıran tarafından yüklenir ve yalnızca ilgili
// kullanıcının satırlarını içermelidir.
//
// Admin her zaman izinlidir ve satır tablosuna hiç bakılmaz. Worker için:
// satır yoksa ErrNoBranchAccess; full_access her seviyeyi karşılar; view_only
// yalnızca view_only isteğini karşılar.
func Evaluate(role models.UserRole, perms []models.UserBranchPermission, branchID uint, required models.PermissionLevel) error {
	if role == models.RoleAdmin {
		return nil
	}

	for _, p := range perms {
		if p.BranchID != branchID {
			continue
		}
		if p.PermissionLevel == models.PermissionFullAccess {
			return nil
		}
		// view_only satırı
		if required == models.PermissionViewOnly {
			return nil
		}
		return ErrInsufficientPermission
	}

	return ErrNoBranchAccess
}

// AllowedBranchIDs - şube belirtilmeyen "tüm şubelerim" sorguları için geçerli
// şube kümesini döndürür. Admin için nil döner ("hepsi" anlamında, filtre
// uygulanmaz). Sıfır satırlı bir worker için hata döner: boş küme sessizce
// "hiç satır" ya da "tüm şubeler" olarak yorumlanamaz.
func AllowedBranchIDs(role models.UserRole, perms []models.UserBranchPermission) ([]uint, error) {
	if role == models.RoleAdmin {
		return nil, nil
	}

	if len(perms) == 0 {
		return nil, ErrNoBranchPermissionsAssigned
	}

	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.BranchID)
	}
	return ids, nil
}

// AsFiberError - izin hatalarını HTTP cevabına çevirir. Red sebepleri ayrı
// mesajlarla 403 döner ki istemci "erişim iste" ile "yükseltme iste" akışını
// ayırt edebilsin.
func AsFiberError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoBranchAccess):
		return fiber.NewError(fiber.StatusForbidden, "Bu şubeye erişim yetkiniz yok")
	case errors.Is(err, ErrInsufficientPermission):
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yetersiz (sadece görüntüleme)")
	case errors.Is(err, ErrNoBranchPermissionsAssigned):
		return fiber.NewError(fiber.StatusForbidden, "Size atanmış bir şube bulunmuyor")
	case errors.Is(err, ErrBranchNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Şube bulunamadı")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Yetki kontrolü yapılamadı")
	}
}
