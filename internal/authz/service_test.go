package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/nurseries/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/nurseries/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/nurseries/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("stock", "/admin/nurseries", "GET"); err != nil {
		t.Fatalf("grant stock policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("shipping", "/orders/admin/:id/confirm", "POST"); err != nil {
		t.Fatalf("grant shipping policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"stock"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:stock" {
		t.Fatalf("roles want [role:stock], got=%v", roles)
	}

	if err := svc.SetAdminRoles(2, []string{"shipping"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:shipping" {
		t.Fatalf("roles want [role:shipping], got=%v", roles)
	}

	allow, err := svc.EnforceAdmin(2, "/admin/nurseries", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceAdmin(2, "/orders/admin/7/confirm", "POST")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/orders/admin/:id/confirm", want: "/orders/admin/:id/confirm"},
		{in: "/admin/nurseries/:id", want: "/admin/nurseries/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole(" inventory manager ")
	if err != nil {
		t.Fatalf("normalize role failed: %v", err)
	}
	if got != "role:inventory_manager" {
		t.Fatalf("unexpected role: %s", got)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("expected empty role rejected")
	}
	if _, err := NormalizeRole("role:"); err == nil {
		t.Fatalf("expected bare prefix rejected")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles twice failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor":  true,
		"role:catalog":           true,
		"role:inventory_manager": true,
		"role:fulfillment":       true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"inventory_manager"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	cases := []struct {
		obj   string
		act   string
		allow bool
	}{
		{obj: "/admin/orders", act: "GET", allow: true},
		{obj: "/api/v1/orders/admin/:id/allocation-suggestions", act: "GET", allow: true},
		{obj: "/admin/nurseries/:id/inventory/:product_id", act: "PUT", allow: true},
		{obj: "/admin/nurseries", act: "POST", allow: true},
		{obj: "/orders/admin/:id/confirm", act: "POST", allow: false},
		{obj: "/admin/products", act: "POST", allow: false},
	}
	for _, item := range cases {
		allow, err := svc.EnforceAdmin(3, item.obj, item.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", item.act, item.obj, err)
		}
		if allow != item.allow {
			t.Fatalf("enforce %s %s want=%v got=%v", item.act, item.obj, item.allow, allow)
		}
	}
}

func TestSetAdminRolesRejectsInvalidWithoutClearing(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(4, []string{"stock"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"shipping", "  "}); err == nil {
		t.Fatalf("expected blank role rejected")
	}
	roles, err := svc.GetAdminRoles(4)
	if err != nil {
		t.Fatalf("get admin roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:stock" {
		t.Fatalf("expected roles untouched, got %v", roles)
	}
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceAdmin(1, "/admin/orders", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.ListRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
