package rbac

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"admin", RoleAdmin},
		{"assistant", RoleAssistant},
		{"", RoleAssistant},
		{"Admin", RoleAssistant},
		{"superuser", RoleAssistant},
	}

	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHardDeleteIsAdminOnly(t *testing.T) {
	if !HasPermission(RoleAdmin, PermissionHardDeleteClient) {
		t.Error("admin should be allowed to hard-delete clients")
	}
	if HasPermission(RoleAssistant, PermissionHardDeleteClient) {
		t.Error("assistant must not hard-delete clients")
	}
}

func TestCheckPermission(t *testing.T) {
	if err := CheckPermission(RoleAssistant, PermissionReadClient); err != nil {
		t.Errorf("assistant read should pass, got %v", err)
	}

	err := CheckPermission(RoleAssistant, PermissionHardDeleteClient)
	if err == nil {
		t.Fatal("assistant hard-delete should be denied")
	}
	if _, ok := err.(*PermissionDeniedError); !ok {
		t.Errorf("expected *PermissionDeniedError, got %T", err)
	}
}
