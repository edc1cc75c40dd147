package model

import (
	platformerrors "forge-server-go/internal/platform/errors"
)

// Role is the closed set of privilege levels.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole validates a caller-supplied role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", platformerrors.New(
			platformerrors.KindInvalid, "identity.parse_role", "invalid role: "+s)
	}
}

// Identity is the persisted account record. TokenVersion advances on every
// credential-invalidating event; a token is only valid while its embedded
// version equals the stored one.
type Identity struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
	TokenVersion int64  `json:"token_version"`
}

// Principal is the authenticated caller derived from a validated credential.
type Principal struct {
	Username     string
	Role         Role
	TokenVersion int64
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Logger is the logging interface used across the domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
