package enums

import "fmt"

// Permission is a capability granted to an operator by the permissions service.
type Permission string

const (
	PermissionViewSales        Permission = "can_view_sales"
	PermissionViewOrders       Permission = "can_view_orders"
	PermissionViewCashRegister Permission = "can_view_cash_register"
)

var Permissions = []Permission{
	PermissionViewSales,
	PermissionViewOrders,
	PermissionViewCashRegister,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// ParsePermission resolves a permission from its wire name.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range Permissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
