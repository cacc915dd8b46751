package model

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Actor is the resolved caller identity handed to the core by the auth
// layer. The zero value is the anonymous public actor.
type Actor struct {
	ID    string
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsAnonymous() bool {
	return a.ID == "" && a.Role == ""
}
