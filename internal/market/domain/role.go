package domain

// Role identifies one participant capability class.
type Role string

const (
	// RoleOperator is the platform operator: grants roles, resolves
	// disputes, and receives the platform commission share.
	RoleOperator Role = "operator"
	// RoleCertifier attests listing certification claims.
	RoleCertifier Role = "certifier"
	// RoleVendor owns catalog listings and receives settlement payouts.
	RoleVendor Role = "vendor"
	// RoleBuyer places orders and escrows payment.
	RoleBuyer Role = "buyer"
)

// Valid reports whether the role is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleCertifier, RoleVendor, RoleBuyer:
		return true
	default:
		return false
	}
}

// SelfRegisterable reports whether a participant may grant the role to
// themselves. Marketplace entry is open for vendors and buyers; operator
// and certifier membership stays curated.
func (r Role) SelfRegisterable() bool {
	return r == RoleVendor || r == RoleBuyer
}
