package user

// User represents a user entity in the system.
type User struct {
	ID           string // ID is the opaque identifier generated on creation
	Name         string // Name is the free-text display name of the user
	EmailAddress string // EmailAddress is stored as given, without format checks
}

// UserPatch carries the fields of an update. Nil fields are left untouched.
type UserPatch struct {
	Name         *string
	EmailAddress *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.EmailAddress == nil
}

// Apply returns a copy of u with the patch fields written over it.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.EmailAddress != nil {
		u.EmailAddress = *p.EmailAddress
	}
	return u
}
