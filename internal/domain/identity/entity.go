package identity

// internal/domain/identity/entity.go
import "time"

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleTechnician   Role = "technician"
	RoleFleetManager Role = "fleet_manager"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleFleetManager, RoleAdmin:
		return true
	}
	return false
}

// Identity is an authenticated user of the wash platform.
type Identity struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	FullName       string    `json:"full_name" db:"full_name"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Role           Role      `json:"role" db:"role"`
	OrganizationID *string   `json:"organization_id,omitempty" db:"organization_id"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the slice of an identity the core services care about: who is
// acting, in which role, and for which tenant.
type Actor struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"` // empty = no organization
}

// Actor derives the acting view of a full identity.
func (i *Identity) Actor() Actor {
	a := Actor{ID: i.ID, Role: i.Role}
	if i.OrganizationID != nil {
		a.OrganizationID = *i.OrganizationID
	}
	return a
}

// IsTechnician reports whether the actor fulfills wash requests.
func (a Actor) IsTechnician() bool { return a.Role == RoleTechnician }

// HasOrganization reports whether the actor belongs to a tenant.
func (a Actor) HasOrganization() bool { return a.OrganizationID != "" }
