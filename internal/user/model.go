package user

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleTechnician Role = "TECHNICIAN"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// User is the identity record owned by the authentication layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Phone        *string
	Role         Role
	TechnicianID *string
	CreatedAt    time.Time
}

// Actor is the authenticated identity invoking a core operation. It is passed
// explicitly into every service call; the core never reads session state.
type Actor struct {
	UserID       string
	Role         Role
	TechnicianID *string
}

func (a Actor) IsAdmin() bool      { return a.Role == RoleAdmin }
func (a Actor) IsTechnician() bool { return a.Role == RoleTechnician }

// OwnsTechnician reports whether the actor is the technician with the given id.
func (a Actor) OwnsTechnician(technicianID string) bool {
	return a.Role == RoleTechnician && a.TechnicianID != nil && *a.TechnicianID == technicianID
}
