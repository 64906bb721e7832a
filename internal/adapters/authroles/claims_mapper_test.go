package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

func TestNewClaimsMapper_InvalidExpression(t *testing.T) {
	_, err := NewClaimsMapper("][", "admin")
	require.Error(t, err)
}

func TestClaimsMapper_ScalarClaim(t *testing.T) {
	mapper, err := NewClaimsMapper("app_role", "admin")
	require.NoError(t, err)

	assert.Equal(t, domainauth.RoleAdmin, mapper.Map(map[string]any{"app_role": "admin"}))
	assert.Equal(t, domainauth.RoleUser, mapper.Map(map[string]any{"app_role": "user"}))
	assert.Equal(t, domainauth.RoleUser, mapper.Map(map[string]any{"other": "admin"}))
}

func TestClaimsMapper_ListClaim(t *testing.T) {
	mapper, err := NewClaimsMapper("groups", "studio-admins")
	require.NoError(t, err)

	claims := map[string]any{"groups": []any{"studio-users", "studio-admins"}}
	assert.Equal(t, domainauth.RoleAdmin, mapper.Map(claims))

	claims = map[string]any{"groups": []any{"studio-users"}}
	assert.Equal(t, domainauth.RoleUser, mapper.Map(claims))
}

func TestClaimsMapper_NestedExpression(t *testing.T) {
	mapper, err := NewClaimsMapper("app_metadata.role", "admin")
	require.NoError(t, err)

	claims := map[string]any{"app_metadata": map[string]any{"role": "admin"}}
	assert.Equal(t, domainauth.RoleAdmin, mapper.Map(claims))
}

func TestClaimsMapper_EmptyClaims(t *testing.T) {
	mapper, err := NewClaimsMapper("app_role", "admin")
	require.NoError(t, err)

	assert.Equal(t, domainauth.RoleUser, mapper.Map(nil))
	assert.Equal(t, domainauth.RoleUser, mapper.Map(map[string]any{}))
}
