package domain

// SessionState is the in-memory record of whether a browser session is
// authenticated and who it belongs to.
//
// Signed implies User != nil and len(Roles) >= 1.
type SessionState struct {
	Signed bool        `json:"signed"`
	User   *UserRecord `json:"user"`
	Roles  []Role      `json:"roles"`
}

// PrimaryRole returns the first role of the session, if any.
func (s SessionState) PrimaryRole() (Role, bool) {
	if len(s.Roles) == 0 {
		return Role{}, false
	}
	return s.Roles[0], true
}

// Identity returns the formatted identity string for a signed session.
func (s SessionState) Identity() string {
	primary, ok := s.PrimaryRole()
	if !s.Signed || s.User == nil || !ok {
		return ""
	}
	return FormatIdentity(s.User.Person, primary)
}

// Clone returns a deep copy of the state.
func (s SessionState) Clone() SessionState {
	out := SessionState{Signed: s.Signed}
	if s.User != nil {
		u := s.User.Clone()
		out.User = &u
	}
	if s.Roles != nil {
		out.Roles = make([]Role, len(s.Roles))
		copy(out.Roles, s.Roles)
	}
	return out
}
