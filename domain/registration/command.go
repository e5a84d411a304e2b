package registration

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterCommand carries the inputs of a /touroku invocation.
// Count accepts any integer, negative values included.
type RegisterCommand struct {
	CSN   string `validate:"required"`
	Count int64
}

// Validate rejects empty or blank CSNs. The CSN itself is kept as supplied.
func (c RegisterCommand) Validate() error {
	return validate.Struct(RegisterCommand{
		CSN:   strings.TrimSpace(c.CSN),
		Count: c.Count,
	})
}
