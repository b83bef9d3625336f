package authz

import "fmt"

// Role is one of the closed set of staff roles recognized by the panel.
// Decision logic never compares free-form role strings; convert through
// ParseRole first.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleSalesManager Role = "sales_manager"
	RoleStockManager Role = "stock_manager"
)

// Roles lists every recognized role.
var Roles = []Role{RoleAdmin, RoleSalesManager, RoleStockManager}

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSalesManager, RoleStockManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Capability is a single permitted action, derived deterministically from a
// role and never granted independently.
type Capability string

const (
	CapViewSales       Capability = "view_sales"
	CapManageProducts  Capability = "manage_products"
	CapManageOrders    Capability = "manage_orders"
	CapViewProductsNav Capability = "view_products_nav"
	CapViewOrdersNav   Capability = "view_orders_nav"
)

// Capabilities lists every capability the panel knows about.
var Capabilities = []Capability{
	CapViewSales,
	CapManageProducts,
	CapManageOrders,
	CapViewProductsNav,
	CapViewOrdersNav,
}

// AuthorizationError reports an action attempted without the required
// capability or credential. It is raised before any remote call is issued.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}
