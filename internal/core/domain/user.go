package domain

// Person holds the display identity of an account holder.
// Lastname is optional and decodes to "" when absent.
type Person struct {
	Name     string `json:"name" bson:"name"`
	Surname  string `json:"surname" bson:"surname"`
	Lastname string `json:"lastname,omitempty" bson:"lastname,omitempty"`
}

// UserRecord is the payload of a successful sign-in.
type UserRecord struct {
	Person Person `json:"person" bson:"person"`
	Roles  []Role `json:"roles" bson:"roles"`
}

// PrimaryRole returns the first role of the record. Additional roles are
// never consulted.
func (u UserRecord) PrimaryRole() (Role, bool) {
	if len(u.Roles) == 0 {
		return Role{}, false
	}
	return u.Roles[0], true
}

// Clone returns a deep copy so callers cannot mutate shared role slices.
func (u UserRecord) Clone() UserRecord {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return UserRecord{Person: u.Person, Roles: roles}
}

// FormatIdentity renders "{name} {surname}{lastname} - {role}". No separator
// is inserted between surname and lastname.
func FormatIdentity(p Person, primary Role) string {
	return p.Name + " " + p.Surname + p.Lastname + " - " + primary.Name
}
