package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Errors is a collected list of human-readable validation messages. It is
// never fatal; callers surface it through flash messages or API responses.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, " ")
}

// Var reports whether value satisfies a validator/v10 rule like
// "email" or "alphanum".
func Var(value, rule string) bool {
	return v.Var(value, rule) == nil
}
