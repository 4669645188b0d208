package lexicon

import (
	"fmt"
	"strings"
)

// Role identifies the interview track a lexicon belongs to.
type Role string

// Supported roles.
const (
	RoleFrontendReact Role = "frontend_react"
	RoleBackendNode   Role = "backend_node"
	RoleDataSQL       Role = "data_sql"
	RoleDevOpsCloud   Role = "devops_cloud"
	RoleMLAI          Role = "ml_ai"
	RoleSecurity      Role = "security"
	RoleSystemDesign  Role = "system_design"
	RoleMobileFlutter Role = "mobile_flutter"
)

var allRoles = []Role{
	RoleFrontendReact,
	RoleBackendNode,
	RoleDataSQL,
	RoleDevOpsCloud,
	RoleMLAI,
	RoleSecurity,
	RoleSystemDesign,
	RoleMobileFlutter,
}

// Roles returns every supported role in catalogue order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole maps an identifier to a Role. Unknown identifiers are a
// configuration fault and yield ErrUnsupportedRole.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
