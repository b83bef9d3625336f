package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epanel-tools/epanel/pkg/sdk"
)

func TestCapabilitiesFor(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	tests := []struct {
		role Role
		want []Capability
	}{
		{
			role: RoleAdmin,
			want: []Capability{CapManageOrders, CapManageProducts, CapViewOrdersNav, CapViewProductsNav, CapViewSales},
		},
		{
			role: RoleSalesManager,
			want: []Capability{CapViewOrdersNav, CapViewSales},
		},
		{
			role: RoleStockManager,
			want: []Capability{CapManageProducts, CapViewProductsNav},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CapabilitiesFor(tt.role))
		})
	}
}

func TestCan(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	t.Run("absent identity holds no capability", func(t *testing.T) {
		for _, capability := range Capabilities {
			assert.False(t, policy.Can(nil, capability), "nil identity must not hold %s", capability)
		}
	})

	t.Run("role outside the closed set holds no capability", func(t *testing.T) {
		identity := &sdk.Identity{ID: 1, Role: "superuser"}
		for _, capability := range Capabilities {
			assert.False(t, policy.Can(identity, capability))
		}
	})

	t.Run("stock manager cannot view sales", func(t *testing.T) {
		identity := &sdk.Identity{ID: 3, Role: string(RoleStockManager)}
		assert.False(t, policy.Can(identity, CapViewSales))
		assert.False(t, policy.Can(identity, CapViewOrdersNav))
		assert.True(t, policy.Can(identity, CapManageProducts))
	})

	t.Run("sales manager cannot manage products", func(t *testing.T) {
		identity := &sdk.Identity{ID: 2, Role: string(RoleSalesManager)}
		assert.False(t, policy.Can(identity, CapManageProducts))
		assert.True(t, policy.Can(identity, CapViewSales))
	})

	t.Run("admin holds everything", func(t *testing.T) {
		identity := &sdk.Identity{ID: 1, Role: string(RoleAdmin)}
		for _, capability := range Capabilities {
			assert.True(t, policy.Can(identity, capability))
		}
	})
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		parsed, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("manager")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}
