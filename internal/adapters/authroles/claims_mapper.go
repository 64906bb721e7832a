package authroles

// Package authroles maps identity-provider claims to application roles.

import (
	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

// ClaimsMapper derives the application role by evaluating a JMESPath
// expression against the raw claim set. The expression result may be a
// single value or a list; the role is admin when the configured admin
// value is present, user otherwise. Evaluation errors degrade to user:
// role mapping must never block a login.
type ClaimsMapper struct {
	rolePath   string
	adminValue string
}

// NewClaimsMapper validates the role path expression and returns a mapper.
func NewClaimsMapper(rolePath, adminValue string) (*ClaimsMapper, error) {
	if _, err := jmespath.Compile(rolePath); err != nil {
		return nil, err
	}
	return &ClaimsMapper{rolePath: rolePath, adminValue: adminValue}, nil
}

// Map implements ports.RoleMapper.
func (m *ClaimsMapper) Map(claims map[string]any) domainauth.Role {
	if len(claims) == 0 {
		return domainauth.RoleUser
	}

	result, err := jmespath.Search(m.rolePath, map[string]any(claims))
	if err != nil {
		return domainauth.RoleUser
	}

	if m.matches(result) {
		return domainauth.RoleAdmin
	}
	return domainauth.RoleUser
}

func (m *ClaimsMapper) matches(result any) bool {
	switch v := result.(type) {
	case string:
		return v == m.adminValue
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == m.adminValue {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == m.adminValue {
				return true
			}
		}
	}
	return false
}
