package authz

import (
	_ "embed"
	"fmt"
	"log"
	"sort"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/epanel-tools/epanel/pkg/sdk"
)

//go:embed model.conf
var policyModel string

// grants is the fixed role -> capability table. It seeds the enforcer at
// construction and is not consulted for decisions afterwards.
var grants = map[Role][]Capability{
	RoleAdmin: {
		CapViewSales,
		CapManageProducts,
		CapManageOrders,
		CapViewProductsNav,
		CapViewOrdersNav,
	},
	RoleSalesManager: {
		CapViewSales,
		CapViewOrdersNav,
	},
	RoleStockManager: {
		CapManageProducts,
		CapViewProductsNav,
	},
}

// Policy is the single source of truth for every role-gated decision in the
// panel: nav visibility, KPI visibility, CRUD access and route admission.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the policy from the embedded model and the fixed
// role -> capability table.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("parse authorization model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	for role, caps := range grants {
		for _, capability := range caps {
			if _, err := enforcer.AddPolicy(string(role), string(capability)); err != nil {
				return nil, fmt.Errorf("seed policy for role %s: %w", role, err)
			}
		}
	}

	return &Policy{enforcer: enforcer}, nil
}

// CapabilitiesFor returns the capability set granted to role, sorted for
// stable display.
func (p *Policy) CapabilitiesFor(role Role) []Capability {
	rules, err := p.enforcer.GetFilteredPolicy(0, string(role))
	if err != nil {
		log.Printf("authorization: list policy for %s: %v", role, err)
		return nil
	}

	caps := make([]Capability, 0, len(rules))
	for _, rule := range rules {
		caps = append(caps, Capability(rule[1]))
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// Can reports whether the identity holds the capability. An absent identity
// holds no capability, and so does one whose role is outside the closed set.
func (p *Policy) Can(identity *sdk.Identity, capability Capability) bool {
	if identity == nil {
		return false
	}
	role, err := ParseRole(identity.Role)
	if err != nil {
		return false
	}

	ok, err := p.enforcer.Enforce(string(role), string(capability))
	if err != nil {
		log.Printf("authorization check failed: %v", err)
		return false
	}
	return ok
}
