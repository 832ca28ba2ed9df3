package auth

import (
	"strings"

	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AdminCode is the operator code that bypasses every permission check.
const AdminCode = "ADMIN"

// Operator is the attendant acting on the terminal, as issued by the
// permissions service.
type Operator struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Permissions []enums.Permission `json:"permissions"`
}

// IsAdmin reports whether the operator code matches the admin code. A nil
// operator is treated as admin: terminals without operator login run
// unrestricted.
func (o *Operator) IsAdmin() bool {
	if o == nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(o.Code), AdminCode)
}

// Has reports whether the operator may use the given permission.
func (o *Operator) Has(permission enums.Permission) bool {
	if o.IsAdmin() {
		return true
	}
	for _, granted := range o.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// DisplayName returns the operator name, or an empty string for anonymous use.
func (o *Operator) DisplayName() string {
	if o == nil {
		return ""
	}
	return strings.TrimSpace(o.Name)
}

// OperatorClaims represents the typed JWT presented by terminals.
type OperatorClaims struct {
	OperatorID  uuid.UUID          `json:"operator_id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Permissions []enums.Permission `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Operator converts the claims into the operator identity.
func (c *OperatorClaims) Operator() *Operator {
	if c == nil {
		return nil
	}
	perms := make([]enums.Permission, len(c.Permissions))
	copy(perms, c.Permissions)
	return &Operator{
		ID:          c.OperatorID,
		Code:        c.Code,
		Name:        c.Name,
		Permissions: perms,
	}
}
