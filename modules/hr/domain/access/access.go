package access

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role is the coarse permission level stored per phone. Newcomers get
// the onboarding experience; everyone else is a plain employee.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleNewcomer Role = "newcomer"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("authorization record not found")

// RoleForTenure classifies by hire date: hired within the last three
// months means newcomer. An unknown hire date means employee.
func RoleForTenure(hireDate, today time.Time) Role {
	if hireDate.IsZero() {
		return RoleEmployee
	}
	if hireDate.After(today.AddDate(0, -3, 0)) {
		return RoleNewcomer
	}
	return RoleEmployee
}

// Record is one authorization row. One employee owns one row per
// mobile phone, all sharing the identity key.
type Record struct {
	ID           string
	Identity     string
	FullName     string
	Phone        string
	Role         Role
	MessengerID  string
	RegisteredAt string
}

// Repository is the authorization table storage.
type Repository interface {
	// GetAllGrouped returns every row grouped by identity.
	GetAllGrouped(ctx context.Context) (map[string][]Record, error)
	GetByRole(ctx context.Context, role Role) ([]Record, error)
	Create(ctx context.Context, rec Record) error
	// UpdateProfile rewrites the name and role of an existing row.
	UpdateProfile(ctx context.Context, recordID, fullName string, role Role) error
	SetRole(ctx context.Context, recordID string, role Role) error
	// Register binds a messenger account to a row.
	Register(ctx context.Context, recordID, messengerID, registeredAt string) error
	Delete(ctx context.Context, recordID string) error
	FindByPhone(ctx context.Context, phone string) (Record, error)
	FindByMessenger(ctx context.Context, messengerID string) (Record, error)
	FindByIdentity(ctx context.Context, identity string) ([]Record, error)
}
