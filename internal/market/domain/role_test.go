package domain

import "testing"

func TestRoleValid(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleOperator, RoleCertifier, RoleVendor, RoleBuyer} {
		if !role.Valid() {
			t.Fatalf("role %s must be valid", role)
		}
	}
	if Role("moderator").Valid() {
		t.Fatal("unknown role must be invalid")
	}
	if Role("").Valid() {
		t.Fatal("empty role must be invalid")
	}
}

func TestSelfRegisterableRoles(t *testing.T) {
	t.Parallel()

	if !RoleVendor.SelfRegisterable() || !RoleBuyer.SelfRegisterable() {
		t.Fatal("vendor and buyer must be open for self-registration")
	}
	if RoleOperator.SelfRegisterable() || RoleCertifier.SelfRegisterable() {
		t.Fatal("operator and certifier are curated roles")
	}
}
