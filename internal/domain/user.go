package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a system user (branch staff, not a borrower).
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// Role represents a user's access level
type Role string

const (
	// RoleManager has full access, including loan deletion and defaults
	RoleManager Role = "manager"

	// RoleOfficer can originate loans and post payments
	RoleOfficer Role = "officer"

	// RoleAuditor can only view loans, payments and summaries
	RoleAuditor Role = "auditor"
)

// Valid roles
var validRoles = map[Role]bool{
	RoleManager: true,
	RoleOfficer: true,
	RoleAuditor: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanOriginate checks if the role can create clients and loans
func (r Role) CanOriginate() bool {
	return r == RoleManager || r == RoleOfficer
}

// CanPostPayments checks if the role can post payments
func (r Role) CanPostPayments() bool {
	return r == RoleManager || r == RoleOfficer
}

// CanDelete checks if the role can delete resources
func (r Role) CanDelete() bool {
	return r == RoleManager
}

// CanManagePortfolio checks if the role can run portfolio sweeps and
// reconciliation
func (r Role) CanManagePortfolio() bool {
	return r == RoleManager
}

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to a context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from a context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
