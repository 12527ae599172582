package domain

import "time"

type AttemptOutcome string

const (
	AttemptSignedIn AttemptOutcome = "signed_in"
	AttemptRejected AttemptOutcome = "rejected"
)

// SignInAttempt is the audit record of one call to the authentication service.
type SignInAttempt struct {
	Username  string
	SessionID string
	Outcome   AttemptOutcome
	Role      string // primary role name, empty when rejected
	Timestamp time.Time
}
