package models

import "github.com/golang-jwt/jwt/v5"

const (
	RoleStaff      = "staff"
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleUser       = "user"
)

// Application permissions
const (
	PermissionWalletRead       = "wallet:read"
	PermissionWalletWrite      = "wallet:write"
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionEscrowWrite      = "escrow:write"
	PermissionDisputeResolve   = "dispute:resolve"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	base := []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionTransactionRead,
		PermissionEscrowWrite,
	}
	switch role {
	case RoleStaff:
		return append(base, PermissionTransactionWrite, PermissionDisputeResolve)
	case RoleClient:
		return append(base, PermissionTransactionWrite)
	case RoleFreelancer, RoleUser:
		return base
	default:
		return []string{}
	}
}
