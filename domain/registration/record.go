package registration

import "time"

// Record is the single stored state of a CSN. Each registration overwrites it.
type Record struct {
	CSN          string
	RegisteredAt time.Time
	Count        int64
}

type Status string

const (
	Created    Status = "created"
	Eligible   Status = "eligible"
	Ineligible Status = "ineligible"
)

// Response is what a registration reports back to the caller.
// For an existing CSN it describes the state found at lookup time, not the one just written.
type Response struct {
	CSN          string
	Status       Status
	ElapsedHours *int64
	RegisteredAt time.Time
	Count        int64
}
