package identity

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active purchase user", func(t *testing.T) {
		u, err := NewUser(tenantID, " Buyer.One ", "secret123")
		require.NoError(t, err)

		assert.Equal(t, "buyer.one", u.Username)
		assert.True(t, u.Active)
		assert.True(t, u.HasGroup(GroupPurchaseUser))
		assert.True(t, u.VerifyPassword("secret123"))
		assert.False(t, u.VerifyPassword("wrong123"))
		require.Len(t, u.GetDomainEvents(), 1)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser(tenantID, "ab", "secret123")
		require.Error(t, err)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser(tenantID, "buyer", "onlyletters")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one letter and one number")
	})
}

func TestUser_Groups(t *testing.T) {
	u, err := NewUser(uuid.New(), "cp.user", "secret123")
	require.NoError(t, err)

	assert.False(t, u.IsPurchaseCP())
	assert.False(t, u.IsPurchaseHOD())

	require.NoError(t, u.SetGroups([]Group{GroupPurchaseUser, GroupPurchaseCP, GroupPurchaseCP}))
	assert.True(t, u.IsPurchaseCP())
	assert.False(t, u.IsPurchaseHOD())
	assert.Equal(t, []string{"purchase_cp", "purchase_user"}, u.Permissions())

	require.NoError(t, u.SetGroups([]Group{GroupPurchaseHOD}))
	assert.True(t, u.IsPurchaseHOD())
	assert.False(t, u.IsPurchaseCP())

	err = u.SetGroups([]Group{"superuser"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown security group")
}

func TestUser_Name(t *testing.T) {
	u, _ := NewUser(uuid.New(), "buyer", "secret123")
	assert.Equal(t, "buyer", u.Name())

	require.NoError(t, u.SetDisplayName("Marc Buyer"))
	assert.Equal(t, "Marc Buyer", u.Name())
}
