package permission

import (
	"errors"
	"testing"

	"kafe-backend/internal/models"
)

func perms(rows ...models.UserBranchPermission) []models.UserBranchPermission {
	return rows
}

func row(branchID uint, level models.PermissionLevel) models.UserBranchPermission {
	return models.UserBranchPermission{UserID: 1, BranchID: branchID, PermissionLevel: level}
}

func TestEvaluateAdminAlwaysAllowed(t *testing.T) {
	// Admin için satır tablosu hiç okunmaz, sıfır satırla bile izinli
	if err := Evaluate(models.RoleAdmin, nil, 42, models.PermissionFullAccess); err != nil {
		t.Fatalf("admin reddedildi: %v", err)
	}
	if err := Evaluate(models.RoleAdmin, nil, 1, models.PermissionViewOnly); err != nil {
		t.Fatalf("admin reddedildi: %v", err)
	}
}

func TestEvaluateWorkerNoRow(t *testing.T) {
	err := Evaluate(models.RoleWorker, perms(row(2, models.PermissionFullAccess)), 5, models.PermissionViewOnly)
	if !errors.Is(err, ErrNoBranchAccess) {
		t.Fatalf("ErrNoBranchAccess bekleniyordu, gelen: %v", err)
	}
}

func TestEvaluateWorkerViewOnly(t *testing.T) {
	p := perms(row(5, models.PermissionViewOnly))

	if err := Evaluate(models.RoleWorker, p, 5, models.PermissionViewOnly); err != nil {
		t.Fatalf("view_only okuma reddedildi: %v", err)
	}

	err := Evaluate(models.RoleWorker, p, 5, models.PermissionFullAccess)
	if !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("ErrInsufficientPermission bekleniyordu, gelen: %v", err)
	}
}

func TestEvaluateWorkerFullAccess(t *testing.T) {
	p := perms(row(5, models.PermissionFullAccess))

	// full_access her seviyeyi karşılar
	if err := Evaluate(models.RoleWorker, p, 5, models.PermissionViewOnly); err != nil {
		t.Fatalf("full_access okuma reddedildi: %v", err)
	}
	if err := Evaluate(models.RoleWorker, p, 5, models.PermissionFullAccess); err != nil {
		t.Fatalf("full_access yazma reddedildi: %v", err)
	}
}

func TestEvaluateUnknownRoleNotAdmin(t *testing.T) {
	// Bilinmeyen/boş rol asla admin gibi davranamaz
	err := Evaluate(models.UserRole(""), nil, 1, models.PermissionViewOnly)
	if !errors.Is(err, ErrNoBranchAccess) {
		t.Fatalf("rolsüz kullanıcı reddedilmeliydi, gelen: %v", err)
	}
}

func TestAllowedBranchIDsAdmin(t *testing.T) {
	ids, err := AllowedBranchIDs(models.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if ids != nil {
		t.Fatalf("admin için nil (filtresiz) bekleniyordu, gelen: %v", ids)
	}
}

func TestAllowedBranchIDsWorkerEmpty(t *testing.T) {
	// Sıfır yetkili worker boş-ama-başarılı sonuç değil hata almalı
	_, err := AllowedBranchIDs(models.RoleWorker, nil)
	if !errors.Is(err, ErrNoBranchPermissionsAssigned) {
		t.Fatalf("ErrNoBranchPermissionsAssigned bekleniyordu, gelen: %v", err)
	}
}

func TestAllowedBranchIDsWorker(t *testing.T) {
	p := perms(row(3, models.PermissionViewOnly), row(7, models.PermissionFullAccess))

	ids, err := AllowedBranchIDs(models.RoleWorker, p)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 7 {
		t.Fatalf("beklenen [3 7], gelen: %v", ids)
	}
}
