package domain

import "time"

// Court represents a bookable sports court.
// The owner identity is used to authorize cancellation and management actions.
type Court struct {
	ID           int64
	OwnerID      int64
	Name         string
	Location     string
	PricePerHour float64
	Available    bool
	Images       []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role represents a caller's role in the system
type Role string

const (
	RoleUser  Role = "User"
	RoleOwner Role = "Owner"
	RoleAdmin Role = "Admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	for _, valid := range ValidRoles {
		if r == valid {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller resolved by the auth middleware.
// The role always comes from the user record, never from request headers.
type Identity struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true for callers with the Admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
