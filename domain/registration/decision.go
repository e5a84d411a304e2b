package registration

import (
	"time"

	"github.com/samber/lo"
)

// EligibilityWindow is the minimum delay between two bandage allocations for the same CSN.
const EligibilityWindow = 24 * time.Hour

// Decide classifies a registration made at now against the prior record.
// A nil prior means the CSN has never been registered.
func Decide(prior *Record, now time.Time) Status {
	if prior == nil {
		return Created
	}
	if now.Sub(prior.RegisteredAt) < EligibilityWindow {
		return Ineligible
	}
	return Eligible
}

// ElapsedHours floors d to whole hours, 23h59m gives 23.
// Negative durations floor toward minus infinity.
func ElapsedHours(d time.Duration) int64 {
	hours := d / time.Hour
	if d%time.Hour < 0 {
		hours--
	}
	return int64(hours)
}

// NewResponse builds the caller-facing response for record, the registration
// being written, given prior, the one it replaces.
func NewResponse(record Record, prior *Record) Response {
	status := Decide(prior, record.RegisteredAt)
	if status == Created {
		return Response{
			CSN:          record.CSN,
			Status:       Created,
			RegisteredAt: record.RegisteredAt,
			Count:        record.Count,
		}
	}
	return Response{
		CSN:          record.CSN,
		Status:       status,
		ElapsedHours: lo.ToPtr(ElapsedHours(record.RegisteredAt.Sub(prior.RegisteredAt))),
		RegisteredAt: prior.RegisteredAt,
		Count:        prior.Count,
	}
}
