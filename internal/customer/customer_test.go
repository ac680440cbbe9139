package customer

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

func TestResolveDeduplicatesByEmail(t *testing.T) {
	db := dbtest.Open(t)

	first, err := Resolve(db, "Jane Doe", "jane@example.com", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, first.Role)
	assert.NotEmpty(t, first.Password)
	assert.True(t, strings.HasPrefix(first.Password, "$2"))
	cost, err := bcrypt.Cost([]byte(first.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	again, err := Resolve(db, "Someone Else", "jane@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Jane Doe", again.Name)

	// exact match only
	other, err := Resolve(db, "Jane", "JANE@example.com", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	var count int64
	db.Model(&domain.Customer{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestResolveRequiresEmail(t *testing.T) {
	_, err := Resolve(dbtest.Open(t), "Nobody", "  ", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestGuestCustomersAreDistinct(t *testing.T) {
	db := dbtest.Open(t)
	a, err := Guest(db)
	require.NoError(t, err)
	b, err := Guest(db)
	require.NoError(t, err)
	assert.NotEqual(t, a.Email, b.Email)
	assert.Equal(t, GuestName, a.Name)
	assert.True(t, strings.HasSuffix(a.Email, "@example.com"))
}
